package billing

import (
	"errors"
	"fmt"
)

var (
	ErrGatewayAuth          = errors.New("gateway authentication failed")
	ErrGatewayOrder         = errors.New("gateway order creation failed")
	ErrGatewayVerify        = errors.New("gateway verification failed")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrUserNotFound         = errors.New("user not found")
	ErrNoMatchingPlan       = errors.New("no plan matches the paid amount")
	ErrActivationPersist    = errors.New("subscription activation could not be persisted")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPayerMismatch        = errors.New("transaction was paid by another customer")
)

// GatewayError carries upstream diagnostics for a failed gateway call.
// Kind is one of ErrGatewayAuth, ErrGatewayOrder or ErrGatewayVerify.
type GatewayError struct {
	Op         string
	Kind       error
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s: status=%d body=%s", e.Kind, e.Op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
}

func (e *GatewayError) Is(target error) bool {
	return target == e.Kind
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err is a business rejection that the
// synchronous verification path should surface as a bad request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrPaymentNotSuccessful) ||
		errors.Is(err, ErrNoMatchingPlan) ||
		errors.Is(err, ErrPayerMismatch)
}
