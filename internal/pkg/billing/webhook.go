package billing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/talentbridge/talentbridge-api/app/models"
)

const (
	WebhookStatusSuccess = "success"
	WebhookStatusFailed  = "failed"
	WebhookStatusIgnored = "ignored"
)

// WebhookInput is one raw gateway delivery.
type WebhookInput struct {
	Payload   []byte
	Signature string
}

// WebhookResult is always returned with a 2xx; Status carries the outcome.
type WebhookResult struct {
	Status       string               `json:"status"`
	Message      string               `json:"message,omitempty"`
	Error        string               `json:"error,omitempty"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

type nombaWebhookPayload struct {
	Event     string `json:"event"`
	EventType string `json:"event_type"`
	RequestID string `json:"requestId"`
	Data      struct {
		OrderReference string `json:"orderReference"`
		CustomerEmail  string `json:"customerEmail"`
		Status         string `json:"status"`
		Order          *struct {
			OrderReference string `json:"orderReference"`
			CustomerEmail  string `json:"customerEmail"`
		} `json:"order"`
	} `json:"data"`
}

type webhookTarget struct {
	OrderReference string `validate:"required"`
	CustomerEmail  string `validate:"required"`
}

var webhookValidator = validator.New()

func (p *nombaWebhookPayload) target() webhookTarget {
	t := webhookTarget{
		OrderReference: strings.TrimSpace(p.Data.OrderReference),
		CustomerEmail:  strings.TrimSpace(p.Data.CustomerEmail),
	}
	if p.Data.Order != nil {
		if t.OrderReference == "" {
			t.OrderReference = strings.TrimSpace(p.Data.Order.OrderReference)
		}
		if t.CustomerEmail == "" {
			t.CustomerEmail = strings.TrimSpace(p.Data.Order.CustomerEmail)
		}
	}
	return t
}

func (p *nombaWebhookPayload) eventType() string {
	if p.Event != "" {
		return p.Event
	}
	return p.EventType
}

// HandleWebhook reconciles one gateway delivery. It never returns an error:
// failures become a "failed" result and are logged. Payloads without a
// reference or email are ignored before any gateway call or write.
func (s *Service) HandleWebhook(ctx context.Context, in WebhookInput) WebhookResult {
	l := s.logger.With(slog.String("method", "HandleWebhook"))
	res := s.handleWebhook(ctx, l, in)
	s.metrics.WebhookResult(res.Status)
	return res
}

func (s *Service) handleWebhook(ctx context.Context, l *slog.Logger, in WebhookInput) WebhookResult {
	signatureValid := false
	if s.webhookSecret != "" {
		if !VerifyNombaWebhookSignature(in.Payload, in.Signature, s.webhookSecret) {
			l.WarnContext(ctx, "webhook signature mismatch")
			return WebhookResult{Status: WebhookStatusIgnored, Message: "Invalid signature"}
		}
		signatureValid = true
	}

	var payload nombaWebhookPayload
	if err := json.Unmarshal(in.Payload, &payload); err != nil {
		l.WarnContext(ctx, "webhook payload is not valid JSON", slog.Any("error", err))
		return WebhookResult{Status: WebhookStatusIgnored, Message: "Invalid payload"}
	}

	target := payload.target()
	if err := webhookValidator.Struct(target); err != nil {
		l.InfoContext(ctx, "webhook ignored", slog.String("event", payload.eventType()))
		return WebhookResult{Status: WebhookStatusIgnored, Message: "Missing reference or email"}
	}

	l = l.With(slog.String("order_reference", target.OrderReference))

	var eventID uint
	_, event, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.BillingProviderNomba,
		ProviderEventID: payload.RequestID,
		EventType:       payload.eventType(),
		OrderReference:  target.OrderReference,
		PayloadJSON:     string(in.Payload),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		l.ErrorContext(ctx, "failed to record webhook event", slog.Any("error", err))
	} else if event != nil {
		eventID = event.ID
	}

	sub, err := s.Reconcile(ctx, target.OrderReference, target.CustomerEmail)

	res := WebhookResult{Status: WebhookStatusSuccess, Subscription: sub}
	if err != nil {
		res = WebhookResult{Status: WebhookStatusFailed, Error: PublicMessage(err)}
	}

	if eventID != 0 {
		if markErr := s.MarkWebhookProcessed(ctx, eventID, res.Status, err); markErr != nil {
			l.ErrorContext(ctx, "failed to mark webhook processed", slog.Any("error", markErr))
		}
	}
	return res
}

var publicErrors = []error{
	ErrTransactionNotFound,
	ErrPaymentNotSuccessful,
	ErrUserNotFound,
	ErrNoMatchingPlan,
	ErrPayerMismatch,
	ErrPlanNotFound,
	ErrActivationPersist,
	ErrGatewayAuth,
	ErrGatewayOrder,
	ErrGatewayVerify,
}

// PublicMessage returns the taxonomy message for err without upstream or
// storage details.
func PublicMessage(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind.Error()
	}
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "internal error"
}
