package billing

import (
	"errors"
	"time"
)

// Metrics receives billing outcomes. The prometheus implementation lives in
// internal/pkg/metrics.
type Metrics interface {
	ReconcileOutcome(outcome string)
	WebhookResult(status string)
	GatewayRequest(operation, result string, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ReconcileOutcome(string)                     {}
func (nopMetrics) WebhookResult(string)                        {}
func (nopMetrics) GatewayRequest(string, string, time.Duration) {}

// outcomeLabel maps an error to a low-cardinality label value.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "activated"
	case errors.Is(err, ErrTransactionNotFound):
		return "transaction_not_found"
	case errors.Is(err, ErrPaymentNotSuccessful):
		return "payment_not_successful"
	case errors.Is(err, ErrPayerMismatch):
		return "payer_mismatch"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrNoMatchingPlan):
		return "no_matching_plan"
	case errors.Is(err, ErrActivationPersist):
		return "persist_error"
	case errors.Is(err, ErrGatewayAuth), errors.Is(err, ErrGatewayVerify), errors.Is(err, ErrGatewayOrder):
		return "gateway_error"
	default:
		return "error"
	}
}
