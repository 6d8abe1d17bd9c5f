package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/talentbridge/talentbridge-api/app/models"
)

// CheckoutOrder is the gateway's answer to an order creation request.
type CheckoutOrder struct {
	OrderReference string `json:"orderReference"`
	CheckoutLink   string `json:"checkoutLink"`
}

// Transaction is the gateway's record of one checkout order. The amount is
// kept as a decimal so fractional reports never match an integer price.
type Transaction struct {
	Status         string
	AmountPaid     decimal.Decimal
	Currency       string
	OrderReference string
	CustomerEmail  string
	TimeCreated    string
}

// ActivationInput is everything the repository needs to persist one
// activation atomically.
type ActivationInput struct {
	User             *models.User
	Plan             Plan
	PaymentReference string
	ActivatedAt      time.Time
}

// InitiationResult is returned to the client that asked for a plan.
type InitiationResult struct {
	PaymentRequired bool   `json:"paymentRequired"`
	CheckoutLink    string `json:"checkoutLink,omitempty"`
	OrderReference  string `json:"orderReference,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Billing is the read-side view of a user's subscription state.
type Billing struct {
	Subscription *models.Subscription `json:"subscription"`
	Payments     []models.Payment     `json:"payments"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	OrderReference  string
	PayloadJSON     string
	SignatureValid  bool
}
