package main

import (
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/talentbridge/talentbridge-api/app/repository"
	"github.com/talentbridge/talentbridge-api/internal/pkg/billing"
	"github.com/talentbridge/talentbridge-api/internal/pkg/cache"
	"github.com/talentbridge/talentbridge-api/internal/pkg/constants"
	"github.com/talentbridge/talentbridge-api/internal/pkg/database"
	"github.com/talentbridge/talentbridge-api/internal/pkg/env"
	"github.com/talentbridge/talentbridge-api/internal/pkg/metrics"
	"github.com/talentbridge/talentbridge-api/internal/pkg/router"
)

func main() {
	app := NewApplication()
	defer database.Close()
	defer cache.Close()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	appLogger := newLogger()
	slog.SetDefault(appLogger)

	registry := metrics.NewRegistry()
	billingMetrics := metrics.NewBillingMetrics(registry)

	gateway := billing.NewNombaClientFromEnv(cache.NewTokenStore(appLogger), billingMetrics, appLogger)
	billingService := billing.NewService(
		billing.NewRepository(database.GetDB()),
		gateway,
		repository.GetGlobalFactory().GetUserRepository(),
		billing.WithLogger(appLogger),
		billing.WithMetrics(billingMetrics),
		billing.WithCallbackBaseURL(env.GetEnv("FRONTEND_URL", "http://localhost:3000")),
		billing.WithWebhookSecret(env.GetEnv("NOMBA_WEBHOOK_SECRET", "")),
	)

	app := fiber.New(fiber.Config{
		AppName:   "talentbridge-api",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	if basePath := findBasePath(); basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: constants.DocsRoute,
			FilePath: basePath + constants.OpenAPIDocumentPath,
			Path:     "v1",
		}))
	} else {
		log.Printf("Warning: openapi.yml not found, API docs disabled")
	}

	// ROUTER
	router.InstallRouter(app, router.Config{
		Billing:         billingService,
		JWTSecret:       env.GetEnv("JWT_SECRET", ""),
		Registry:        registry,
		MetricsUser:     env.GetEnv("METRICS_USER", ""),
		MetricsPassword: env.GetEnv("METRICS_PASSWORD", ""),
		LimiterStorage:  newLimiterStorage(),
	})

	return app
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if env.IsDev() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// findBasePath locates the project root from the usual working directories.
func findBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/talentbridge to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + constants.OpenAPIDocumentPath); err == nil {
			return path
		}
	}
	return ""
}

// newLimiterStorage shares rate-limit counters through Redis DB 2 when the
// cache is reachable.
func newLimiterStorage() fiber.Storage {
	if !cache.Available() {
		return nil
	}
	opts := cache.GetClient().Options()
	host, rawPort, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return nil
	}
	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: 2,
		Reset:    false,
	})
}
