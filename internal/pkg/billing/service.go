package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talentbridge/talentbridge-api/app/models"
	"github.com/talentbridge/talentbridge-api/app/repository"
	"github.com/talentbridge/talentbridge-api/internal/pkg/constants"
	"gorm.io/gorm"
)

const (
	subscriptionPeriod = 365 * 24 * time.Hour
	recentPaymentLimit = 10

	freePlanMessage = "Free plan activated successfully"
)

// UserLookup resolves the payer of a gateway transaction. Implementations
// return gorm.ErrRecordNotFound (or a nil user) when nobody matches.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service reconciles gateway payments into local subscriptions.
type Service struct {
	repo    Repository
	gateway Gateway
	users   UserLookup
	catalog *Catalog
	logger  *slog.Logger
	metrics Metrics

	callbackBaseURL string
	webhookSecret   string
	now             func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithCatalog(c *Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCallbackBaseURL sets the public frontend URL the gateway redirects to.
func WithCallbackBaseURL(u string) Option {
	return func(s *Service) { s.callbackBaseURL = strings.TrimRight(strings.TrimSpace(u), "/") }
}

// WithWebhookSecret enables signature checks on incoming webhooks.
func WithWebhookSecret(secret string) Option {
	return func(s *Service) { s.webhookSecret = strings.TrimSpace(secret) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, gateway Gateway, users UserLookup, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		gateway: gateway,
		users:   users,
		catalog: DefaultCatalog(),
		logger:  slog.Default(),
		metrics: nopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gateway Gateway, opts ...Option) *Service {
	return NewService(NewRepository(db), gateway, repository.NewUserRepository(db), opts...)
}

// Catalog exposes the plan table the service matches against.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Reconcile verifies orderReference with the gateway and activates the
// matching plan for the user exactly once. Calling it again for an already
// activated reference returns the existing subscription.
func (s *Service) Reconcile(ctx context.Context, orderReference, userEmail string) (*models.Subscription, error) {
	ref := strings.TrimSpace(orderReference)
	l := s.logger.With(slog.String("method", "Reconcile"), slog.String("order_reference", ref))

	sub, replayed, err := s.reconcile(ctx, l, ref, userEmail)
	switch {
	case err != nil:
		s.metrics.ReconcileOutcome(outcomeLabel(err))
		l.ErrorContext(ctx, "reconciliation failed", slog.Any("error", err))
		return nil, err
	case replayed:
		s.metrics.ReconcileOutcome("already_activated")
		l.InfoContext(ctx, "reference already activated", slog.Uint64("subscription_id", uint64(sub.ID)))
	default:
		s.metrics.ReconcileOutcome(outcomeLabel(nil))
		l.InfoContext(ctx, "subscription activated",
			slog.Uint64("subscription_id", uint64(sub.ID)),
			slog.String("tier", sub.Tier))
	}
	return sub, nil
}

func (s *Service) reconcile(ctx context.Context, l *slog.Logger, ref, userEmail string) (*models.Subscription, bool, error) {
	if ref == "" {
		return nil, false, ErrTransactionNotFound
	}

	// Verifying
	tx, err := s.gateway.VerifyTransaction(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	if tx.Status != NombaStatusSuccess {
		return nil, false, fmt.Errorf("%w: status=%s", ErrPaymentNotSuccessful, tx.Status)
	}
	// The gateway's customer, when reported, must be the caller.
	if payer := models.NormalizeEmail(tx.CustomerEmail); payer != "" && payer != models.NormalizeEmail(userEmail) {
		return nil, false, ErrPayerMismatch
	}

	user, err := s.users.GetByEmail(ctx, userEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user == nil) {
		return nil, false, fmt.Errorf("%w: %s", ErrUserNotFound, models.NormalizeEmail(userEmail))
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	// Matching plan
	plan, ok := s.matchPlan(tx)
	if !ok {
		l.WarnContext(ctx, "payment verified but no plan matches the amount",
			slog.String("amount", tx.AmountPaid.String()),
			slog.String("currency", tx.Currency),
			slog.Uint64("user_id", uint64(user.ID)))
		return nil, false, fmt.Errorf("%w: amount=%s", ErrNoMatchingPlan, tx.AmountPaid.String())
	}

	// Activating
	sub, err := s.repo.Activate(ctx, ActivationInput{
		User:             user,
		Plan:             plan,
		PaymentReference: ref,
		ActivatedAt:      s.now().UTC(),
	})
	if err == nil {
		return sub, false, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, fmt.Errorf("%w: %v", ErrActivationPersist, err)
	}

	existing, lookupErr := s.repo.GetSubscriptionByReference(ctx, ref)
	if lookupErr != nil {
		return nil, false, fmt.Errorf("%w: load activated reference: %v", ErrActivationPersist, lookupErr)
	}
	if existing.UserID != user.ID {
		return nil, false, fmt.Errorf("%w: reference is bound to another user", ErrActivationPersist)
	}
	return existing, true, nil
}

// matchPlan picks the paid plan whose price equals the verified amount.
// Fractional or non-positive amounts never match.
func (s *Service) matchPlan(tx *Transaction) (Plan, bool) {
	if !tx.AmountPaid.IsInteger() || !tx.AmountPaid.IsPositive() {
		return Plan{}, false
	}
	return s.catalog.FindByAmount(tx.AmountPaid.IntPart(), tx.Currency)
}

// InitiateSubscription starts a checkout for planID. Free plans return
// immediately without contacting the gateway.
func (s *Service) InitiateSubscription(ctx context.Context, userEmail, planID string) (*InitiationResult, error) {
	l := s.logger.With(slog.String("method", "InitiateSubscription"), slog.String("plan_id", planID))

	plan, ok := s.catalog.FindByID(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	if plan.IsFree() {
		return &InitiationResult{PaymentRequired: false, Message: freePlanMessage}, nil
	}

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:        plan.Price,
		Currency:      plan.Currency,
		CustomerEmail: models.NormalizeEmail(userEmail),
		CallbackURL:   s.callbackURL(),
	})
	if err != nil {
		l.ErrorContext(ctx, "checkout order failed", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "checkout order created", slog.String("order_reference", order.OrderReference))
	return &InitiationResult{
		PaymentRequired: true,
		CheckoutLink:    order.CheckoutLink,
		OrderReference:  order.OrderReference,
	}, nil
}

func (s *Service) callbackURL() string {
	return s.callbackBaseURL + constants.PaymentCallbackRoute
}

// GetBilling returns the current subscription (nil when none) and the most
// recent payments of a user.
func (s *Service) GetBilling(ctx context.Context, userID uint) (*Billing, error) {
	sub, err := s.repo.GetCurrentSubscription(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	payments, err := s.repo.ListRecentPayments(ctx, userID, recentPaymentLimit)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return &Billing{Subscription: sub, Payments: payments}, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		OrderReference:  strings.TrimSpace(in.OrderReference),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, outcome string, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, outcome, errMsg)
}
