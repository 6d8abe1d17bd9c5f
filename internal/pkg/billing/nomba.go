package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/talentbridge/talentbridge-api/internal/pkg/env"
)

const (
	defaultNombaBaseURL = "https://api.nomba.com/v1"

	// DefaultNombaHTTPTimeout bounds each gateway request.
	DefaultNombaHTTPTimeout = 5 * time.Second

	// NombaStatusSuccess is the exact, case-sensitive status of a settled checkout.
	NombaStatusSuccess = "SUCCESS"

	tokenExpirySkew = 60 * time.Second
	maxBodyBytes    = 1 << 20
)

// TokenStore caches gateway access tokens. Implementations must be safe for
// concurrent use; a miss only costs an extra token request.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, token string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Gateway is the subset of the Nomba client used by the billing service.
type Gateway interface {
	CreateOrder(ctx context.Context, in OrderRequest) (*CheckoutOrder, error)
	VerifyTransaction(ctx context.Context, orderReference string) (*Transaction, error)
}

// OrderRequest opens a hosted checkout for a single payment.
type OrderRequest struct {
	Amount        int64
	Currency      string
	CustomerEmail string
	CallbackURL   string
	Description   string
}

// NombaClient talks to the Nomba checkout API. Every call is a single
// request with no retry.
type NombaClient struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	AccountID    string

	HTTPClient *http.Client
	Tokens     TokenStore
	Metrics    Metrics
	Logger     *slog.Logger
}

type nombaTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	} `json:"data"`
}

type nombaOrderResponse struct {
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Data        CheckoutOrder `json:"data"`
}

type nombaVerifyResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Data        struct {
		Results []struct {
			Status         string          `json:"status"`
			Amount         decimal.Decimal `json:"amount"`
			Currency       string          `json:"currency"`
			OrderReference string          `json:"orderReference"`
			CustomerEmail  string          `json:"customerEmail"`
			TimeCreated    string          `json:"timeCreated"`
		} `json:"results"`
	} `json:"data"`
}

// NewNombaClientFromEnv builds a client from NOMBA_* variables.
func NewNombaClientFromEnv(tokens TokenStore, metrics Metrics, logger *slog.Logger) *NombaClient {
	return &NombaClient{
		BaseURL:      strings.TrimRight(strings.TrimSpace(env.GetEnv("NOMBA_BASE_URL", defaultNombaBaseURL)), "/"),
		ClientID:     strings.TrimSpace(env.GetEnv("NOMBA_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("NOMBA_PRIVATE_KEY", "")),
		AccountID:    strings.TrimSpace(env.GetEnv("NOMBA_ACCOUNT_ID", "")),
		HTTPClient: &http.Client{
			Timeout: env.GetEnvDuration("NOMBA_HTTP_TIMEOUT", DefaultNombaHTTPTimeout),
		},
		Tokens:  tokens,
		Metrics: metrics,
		Logger:  logger,
	}
}

func (c *NombaClient) tokenKey() string {
	return "nomba:token:" + c.AccountID
}

func (c *NombaClient) metrics() Metrics {
	if c.Metrics == nil {
		return nopMetrics{}
	}
	return c.Metrics
}

func (c *NombaClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *NombaClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: DefaultNombaHTTPTimeout}
	}
	return c.HTTPClient
}

// AccessToken returns a bearer token, from the cache when one is stored.
func (c *NombaClient) AccessToken(ctx context.Context) (string, error) {
	if c.Tokens != nil {
		if token, ok := c.Tokens.Get(ctx, c.tokenKey()); ok && token != "" {
			return token, nil
		}
	}

	if c.ClientID == "" || c.ClientSecret == "" || c.AccountID == "" {
		return "", &GatewayError{
			Op:   "token",
			Kind: ErrGatewayAuth,
			Err:  errors.New("NOMBA_CLIENT_ID/NOMBA_PRIVATE_KEY/NOMBA_ACCOUNT_ID are not configured"),
		}
	}

	payload := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
	}
	var out nombaTokenResponse
	if err := c.do(ctx, "token", ErrGatewayAuth, http.MethodPost, "/auth/token/issue", "", payload, &out); err != nil {
		return "", err
	}

	token := strings.TrimSpace(out.Data.AccessToken)
	if token == "" {
		return "", &GatewayError{Op: "token", Kind: ErrGatewayAuth, Err: errors.New("empty access_token")}
	}

	if c.Tokens != nil && out.Data.ExpiresIn > 0 {
		ttl := time.Duration(out.Data.ExpiresIn)*time.Second - tokenExpirySkew
		if ttl > 0 {
			c.Tokens.Set(ctx, c.tokenKey(), token, ttl)
		}
	}
	return token, nil
}

// CreateOrder opens a checkout order and returns the hosted payment link.
// The reference returned by the gateway is authoritative.
func (c *NombaClient) CreateOrder(ctx context.Context, in OrderRequest) (*CheckoutOrder, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, &GatewayError{Op: "order", Kind: ErrGatewayOrder, Err: err}
	}

	description := in.Description
	if description == "" {
		description = "Subscription Payment"
	}
	payload := map[string]any{
		"order": map[string]any{
			"orderReference": uuid.NewString(),
			"amount":         in.Amount,
			"currency":       in.Currency,
			"customerEmail":  in.CustomerEmail,
			"description":    description,
		},
		"callbackUrl": in.CallbackURL,
	}

	var out nombaOrderResponse
	if err := c.do(ctx, "order", ErrGatewayOrder, http.MethodPost, "/checkout/order", token, payload, &out); err != nil {
		return nil, err
	}
	if out.Data.OrderReference == "" || out.Data.CheckoutLink == "" {
		return nil, &GatewayError{
			Op:   "order",
			Kind: ErrGatewayOrder,
			Err:  fmt.Errorf("response missing order reference or checkout link (code=%s)", out.Code),
		}
	}
	return &out.Data, nil
}

// VerifyTransaction fetches the gateway's record for orderReference.
// Zero results yield ErrTransactionNotFound.
func (c *NombaClient) VerifyTransaction(ctx context.Context, orderReference string) (*Transaction, error) {
	ref := strings.TrimSpace(orderReference)
	if ref == "" {
		return nil, ErrTransactionNotFound
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Kind: ErrGatewayVerify, Err: err}
	}

	q := url.Values{}
	q.Set("orderReference", ref)

	var out nombaVerifyResponse
	if err := c.do(ctx, "verify", ErrGatewayVerify, http.MethodGet, "/checkout/transaction?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Data.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, ref)
	}

	r := out.Data.Results[0]
	txRef := r.OrderReference
	if txRef == "" {
		txRef = ref
	}
	return &Transaction{
		Status:         strings.TrimSpace(r.Status),
		AmountPaid:     r.Amount,
		Currency:       strings.ToUpper(strings.TrimSpace(r.Currency)),
		OrderReference: txRef,
		CustomerEmail:  r.CustomerEmail,
		TimeCreated:    r.TimeCreated,
	}, nil
}

// do performs one JSON request and decodes a 2xx body into out. Every
// failure is returned as a *GatewayError of the given kind.
func (c *NombaClient) do(ctx context.Context, op string, kind error, method, path, token string, payload, out any) error {
	start := time.Now()
	result := "error"
	defer func() {
		c.metrics().GatewayRequest(op, result, time.Since(start))
	}()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return &GatewayError{Op: op, Kind: kind, Err: err}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &GatewayError{Op: op, Kind: kind, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("accountId", c.AccountID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().ErrorContext(ctx, "nomba request failed",
			slog.String("operation", op),
			slog.Any("error", err))
		return &GatewayError{Op: op, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result = fmt.Sprintf("http_%d", resp.StatusCode)
		c.logger().ErrorContext(ctx, "nomba request rejected",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)))
		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.Tokens != nil {
			c.Tokens.Delete(ctx, c.tokenKey())
		}
		return &GatewayError{Op: op, Kind: kind, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{Op: op, Kind: kind, Err: fmt.Errorf("decode response: %w", err)}
	}
	result = "ok"
	return nil
}
