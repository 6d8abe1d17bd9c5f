package models

import "time"

const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusPending   = "PENDING"
)

const PaymentMethodNombaCheckout = "NOMBA_CHECKOUT"

// Payment records one reconciled gateway transaction. GatewayReference is
// unique and acts as the activation idempotency key.
type Payment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID   uint      `gorm:"not null;index" json:"subscription_id"`
	Amount           int64     `gorm:"not null" json:"amount"`
	Currency         string    `gorm:"type:varchar(3);not null" json:"currency"`
	Status           string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	GatewayReference string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_payments_gateway_reference" json:"gateway_reference"`
	PaidAt           time.Time `gorm:"not null;index" json:"paid_at"`
	PaymentMethod    string    `gorm:"type:varchar(50);not null" json:"payment_method"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Subscription *Subscription `gorm:"foreignKey:SubscriptionID" json:"-"`
}
