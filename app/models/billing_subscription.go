package models

import "time"

const (
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusExpired   = "EXPIRED"
	SubscriptionStatusCancelled = "CANCELLED"
)

// Subscription is one paid period of a plan. A user keeps every historical row;
// the current one is the newest ACTIVE row by EndDate.
type Subscription struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index:idx_subscriptions_user_status,priority:1" json:"user_id"`
	UserType         string    `gorm:"type:varchar(20);not null" json:"user_type"`
	Tier             string    `gorm:"type:varchar(50);not null;index" json:"tier"`
	Amount           int64     `gorm:"not null" json:"amount"`
	Currency         string    `gorm:"type:varchar(3);not null" json:"currency"`
	StartDate        time.Time `gorm:"not null" json:"start_date"`
	EndDate          time.Time `gorm:"not null" json:"end_date"`
	Status           string    `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_subscriptions_user_status,priority:2" json:"status"`
	IsRecurring      bool      `gorm:"default:true" json:"is_recurring"`
	PaymentReference string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_payment_reference" json:"payment_reference"`
	LastPaymentDate  time.Time `gorm:"not null" json:"last_payment_date"`
	NextPaymentDate  time.Time `gorm:"not null" json:"next_payment_date"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
