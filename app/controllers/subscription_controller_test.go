package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/talentbridge-api/app/models"
	"github.com/talentbridge/talentbridge-api/internal/pkg/billing"
	"github.com/talentbridge/talentbridge-api/internal/pkg/usercontext"
)

type stubBillingService struct {
	initiateRes *billing.InitiationResult
	initiateErr error
	reconcile   *models.Subscription
	reconErr    error
	billingRes  *billing.Billing
	billingErr  error
	webhookRes  billing.WebhookResult

	gotEmail     string
	gotPlanID    string
	gotReference string
	gotUserID    uint
	gotWebhook   billing.WebhookInput
}

func (s *stubBillingService) Catalog() *billing.Catalog { return billing.DefaultCatalog() }

func (s *stubBillingService) InitiateSubscription(_ context.Context, email, planID string) (*billing.InitiationResult, error) {
	s.gotEmail, s.gotPlanID = email, planID
	return s.initiateRes, s.initiateErr
}

func (s *stubBillingService) Reconcile(_ context.Context, ref, email string) (*models.Subscription, error) {
	s.gotReference, s.gotEmail = ref, email
	return s.reconcile, s.reconErr
}

func (s *stubBillingService) GetBilling(_ context.Context, userID uint) (*billing.Billing, error) {
	s.gotUserID = userID
	return s.billingRes, s.billingErr
}

func (s *stubBillingService) HandleWebhook(_ context.Context, in billing.WebhookInput) billing.WebhookResult {
	s.gotWebhook = in
	return s.webhookRes
}

func newTestApp(svc BillingService) *fiber.App {
	sc := NewSubscriptionController(svc)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     7,
			Email:      "employer@example.com",
			Role:       models.ROLE_EMPLOYER,
			IsLoggedIn: true,
		})
		return c.Next()
	})
	app.Get("/plans", sc.HandlePlans)
	app.Post("/subscriptions/create", sc.HandleCreate)
	app.Post("/subscriptions/verify", sc.HandleVerify)
	app.Get("/subscriptions/my-billing", sc.HandleMyBilling)
	app.Post("/payments/webhook", sc.HandlePaymentWebhook)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHandlePlans(t *testing.T) {
	app := newTestApp(&stubBillingService{})

	status, body := doJSON(t, app, "GET", "/plans", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Plans retrieved successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["TALENT"], 2)
	assert.Len(t, data["EMPLOYER"], 2)

	status, body = doJSON(t, app, "GET", "/plans?audience=employer", "")
	require.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Len(t, data, 1)
	assert.Len(t, data["EMPLOYER"], 2)

	status, _ = doJSON(t, app, "GET", "/plans?audience=admin", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleCreate(t *testing.T) {
	svc := &stubBillingService{initiateRes: &billing.InitiationResult{
		PaymentRequired: true,
		CheckoutLink:    "https://checkout.nomba.com/pay/r1",
		OrderReference:  "r1",
	}}
	app := newTestApp(svc)

	status, body := doJSON(t, app, "POST", "/subscriptions/create", `{"planId":"employer_basic"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["paymentRequired"])
	assert.Equal(t, "https://checkout.nomba.com/pay/r1", body["checkoutLink"])
	assert.Equal(t, "r1", body["orderReference"])
	assert.Equal(t, "employer@example.com", svc.gotEmail)
	assert.Equal(t, "employer_basic", svc.gotPlanID)
}

func TestHandleCreateFreePlan(t *testing.T) {
	svc := &stubBillingService{initiateRes: &billing.InitiationResult{PaymentRequired: false, Message: "Free plan activated successfully"}}
	app := newTestApp(svc)

	status, body := doJSON(t, app, "POST", "/subscriptions/create", `{"planId":"talent_free"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["paymentRequired"])
	assert.Equal(t, "Free plan activated successfully", body["message"])
	assert.NotContains(t, body, "checkoutLink")
}

func TestHandleCreateValidation(t *testing.T) {
	svc := &stubBillingService{}
	app := newTestApp(svc)

	status, body := doJSON(t, app, "POST", "/subscriptions/create", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", body["error"])
	assert.Equal(t, "planID is required", body["message"])
	assert.Empty(t, svc.gotPlanID)

	status, body = doJSON(t, app, "POST", "/subscriptions/create", `{"planId":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_body", body["error"])
}

func TestBillingErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "unknown plan", err: billing.ErrPlanNotFound, status: fiber.StatusBadRequest, message: "plan not found"},
		{name: "not successful", err: billing.ErrPaymentNotSuccessful, status: fiber.StatusBadRequest, message: "payment not successful"},
		{name: "no plan", err: billing.ErrNoMatchingPlan, status: fiber.StatusBadRequest, message: "no plan matches the paid amount"},
		{name: "payer mismatch", err: billing.ErrPayerMismatch, status: fiber.StatusBadRequest, message: "transaction was paid by another customer"},
		{name: "user", err: billing.ErrUserNotFound, status: fiber.StatusNotFound, message: "user not found"},
		{name: "transaction", err: billing.ErrTransactionNotFound, status: fiber.StatusNotFound, message: "transaction not found"},
		{name: "gateway", err: &billing.GatewayError{Op: "verify", Kind: billing.ErrGatewayVerify, StatusCode: 500, Body: "upstream secret"}, status: fiber.StatusInternalServerError, message: "Payment processing failed"},
		{name: "persist", err: billing.ErrActivationPersist, status: fiber.StatusInternalServerError, message: "Payment processing failed"},
		{name: "unknown", err: errors.New("boom"), status: fiber.StatusInternalServerError, message: "Payment processing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubBillingService{reconErr: tt.err})

			status, body := doJSON(t, app, "POST", "/subscriptions/verify", `{"orderReference":"r1"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestHandleVerify(t *testing.T) {
	svc := &stubBillingService{reconcile: &models.Subscription{ID: 3, Tier: "EMPLOYER_BASIC", Status: models.SubscriptionStatusActive}}
	app := newTestApp(svc)

	status, body := doJSON(t, app, "POST", "/subscriptions/verify", `{"orderReference":"r1"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	sub := body["subscription"].(map[string]interface{})
	assert.Equal(t, "EMPLOYER_BASIC", sub["tier"])
	assert.Equal(t, "r1", svc.gotReference)
	assert.Equal(t, "employer@example.com", svc.gotEmail)
}

func TestHandleMyBilling(t *testing.T) {
	svc := &stubBillingService{billingRes: &billing.Billing{
		Subscription: &models.Subscription{ID: 3, Tier: "EMPLOYER_BASIC"},
		Payments:     []models.Payment{{ID: 9, GatewayReference: "r1"}},
	}}
	app := newTestApp(svc)

	status, body := doJSON(t, app, "GET", "/subscriptions/my-billing", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 7, svc.gotUserID)
	assert.NotNil(t, body["subscription"])
	assert.Len(t, body["payments"], 1)
}

func TestHandlePaymentWebhookAlwaysOK(t *testing.T) {
	tests := []struct {
		name   string
		result billing.WebhookResult
	}{
		{name: "success", result: billing.WebhookResult{Status: billing.WebhookStatusSuccess}},
		{name: "failed", result: billing.WebhookResult{Status: billing.WebhookStatusFailed, Error: "payment not successful"}},
		{name: "ignored", result: billing.WebhookResult{Status: billing.WebhookStatusIgnored, Message: "Missing reference or email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBillingService{webhookRes: tt.result}
			app := newTestApp(svc)

			req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(`{"event":"payment_success"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("nomba-signature", "abc")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			var body billing.WebhookResult
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.result.Status, body.Status)
			assert.Equal(t, `{"event":"payment_success"}`, string(svc.gotWebhook.Payload))
			assert.Equal(t, "abc", svc.gotWebhook.Signature)
		})
	}
}

func TestRequestTimeoutCoversGatewayCalls(t *testing.T) {
	// token fetch + verify, each at the gateway timeout, must leave room for the database
	assert.Greater(t, requestTimeout, 2*billing.DefaultNombaHTTPTimeout)
}
