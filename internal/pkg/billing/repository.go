package billing

import (
	"context"
	"time"

	"github.com/talentbridge/talentbridge-api/app/models"
	"github.com/talentbridge/talentbridge-api/app/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
//
// Activate must return an error matching gorm.ErrDuplicatedKey when the
// payment reference was already activated, and must leave no rows behind on
// any failure.
type Repository interface {
	Activate(ctx context.Context, in ActivationInput) (*models.Subscription, error)
	GetSubscriptionByReference(ctx context.Context, reference string) (*models.Subscription, error)
	GetCurrentSubscription(ctx context.Context, userID uint) (*models.Subscription, error)
	ListRecentPayments(ctx context.Context, userID uint, limit int) ([]models.Payment, error)
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, outcome, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM. The handle must
// be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// NewSubscription builds the row an activation inserts.
func NewSubscription(in ActivationInput) *models.Subscription {
	end := in.ActivatedAt.Add(subscriptionPeriod)
	return &models.Subscription{
		UserID:           in.User.ID,
		UserType:         in.User.Role,
		Tier:             in.Plan.Tier(),
		Amount:           in.Plan.Price,
		Currency:         in.Plan.Currency,
		StartDate:        in.ActivatedAt,
		EndDate:          end,
		Status:           models.SubscriptionStatusActive,
		IsRecurring:      true,
		PaymentReference: in.PaymentReference,
		LastPaymentDate:  in.ActivatedAt,
		NextPaymentDate:  end,
	}
}

// NewPayment builds the completed payment row for an activated subscription.
func NewPayment(sub *models.Subscription) *models.Payment {
	return &models.Payment{
		SubscriptionID:   sub.ID,
		Amount:           sub.Amount,
		Currency:         sub.Currency,
		Status:           models.PaymentStatusCompleted,
		GatewayReference: sub.PaymentReference,
		PaidAt:           sub.StartDate,
		PaymentMethod:    models.PaymentMethodNombaCheckout,
	}
}

func (r *gormRepository) Activate(ctx context.Context, in ActivationInput) (*models.Subscription, error) {
	sub := NewSubscription(in)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		if err := tx.Create(NewPayment(sub)).Error; err != nil {
			return err
		}

		profiles := repository.NewProfileRepository(tx)
		switch {
		case in.User.IsTalent():
			return profiles.LinkTalentSubscription(ctx, in.User.ID, sub.ID)
		case in.User.IsEmployer():
			return profiles.LinkEmployerSubscription(ctx, in.User.ID, sub.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *gormRepository) GetSubscriptionByReference(ctx context.Context, reference string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetCurrentSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListRecentPayments(ctx context.Context, userID uint, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.id = payments.subscription_id").
		Where("subscriptions.user_id = ?", userID).
		Order("payments.paid_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.WithContext(ctx).Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, outcome, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"outcome":          outcome,
		"processing_error": processingError,
	}
	return r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
