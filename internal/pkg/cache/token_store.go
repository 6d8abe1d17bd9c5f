package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps gateway tokens in the shared Redis cache so every
// instance uses one token. Errors are logged and treated as a miss.
type RedisTokenStore struct {
	logger *slog.Logger
}

func NewRedisTokenStore(logger *slog.Logger) *RedisTokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisTokenStore{logger: logger}
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, bool) {
	v, err := Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "token cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return "", false
	}
	return v, true
}

func (s *RedisTokenStore) Set(ctx context.Context, key, token string, ttl time.Duration) {
	if err := Set(ctx, key, token, ttl); err != nil {
		s.logger.WarnContext(ctx, "token cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *RedisTokenStore) Delete(ctx context.Context, key string) {
	if err := Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "token cache delete failed", slog.String("key", key), slog.Any("error", err))
	}
}

// MemoryTokenStore is the per-process fallback when Redis is unreachable.
type MemoryTokenStore struct {
	c *gocache.Cache
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{c: gocache.New(time.Hour, 10*time.Minute)}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (string, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}

func (s *MemoryTokenStore) Set(_ context.Context, key, token string, ttl time.Duration) {
	s.c.Set(key, token, ttl)
}

func (s *MemoryTokenStore) Delete(_ context.Context, key string) {
	s.c.Delete(key)
}

// TokenStore is implemented by both stores.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, token string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// NewTokenStore returns the Redis store when the cache answered at startup
// and the in-memory store otherwise.
func NewTokenStore(logger *slog.Logger) TokenStore {
	if Available() {
		return NewRedisTokenStore(logger)
	}
	return NewMemoryTokenStore()
}
