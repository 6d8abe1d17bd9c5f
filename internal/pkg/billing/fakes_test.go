package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/talentbridge/talentbridge-api/app/models"
	"gorm.io/gorm"
)

// memoryRepository enforces the same uniqueness rules as the SQL schema so
// idempotence and race properties can be tested without a database.
type memoryRepository struct {
	mu sync.Mutex

	nextID        uint
	subscriptions []models.Subscription
	payments      []models.Payment
	talent        map[uint]models.TalentProfile
	employer      map[uint]models.EmployerProfile
	events        []models.BillingWebhookEvent

	activateCalls int
	activateErr   error
	activateDelay time.Duration
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		talent:   map[uint]models.TalentProfile{},
		employer: map[uint]models.EmployerProfile{},
	}
}

func (r *memoryRepository) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memoryRepository) Activate(ctx context.Context, in ActivationInput) (*models.Subscription, error) {
	if r.activateDelay > 0 {
		time.Sleep(r.activateDelay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.activateCalls++

	if r.activateErr != nil {
		return nil, r.activateErr
	}
	for _, p := range r.payments {
		if p.GatewayReference == in.PaymentReference {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	for _, s := range r.subscriptions {
		if s.PaymentReference == in.PaymentReference {
			return nil, gorm.ErrDuplicatedKey
		}
	}

	sub := NewSubscription(in)
	sub.ID = r.id()
	payment := NewPayment(sub)
	payment.ID = r.id()
	r.subscriptions = append(r.subscriptions, *sub)
	r.payments = append(r.payments, *payment)

	subID := sub.ID
	userID := in.User.ID
	switch {
	case in.User.IsTalent():
		p := r.talent[userID]
		p.UserID = userID
		p.SubscriptionID = &subID
		r.talent[userID] = p
	case in.User.IsEmployer():
		p := r.employer[userID]
		p.UserID = userID
		p.SubscriptionID = &subID
		r.employer[userID] = p
	}

	out := *sub
	return &out, nil
}

func (r *memoryRepository) GetSubscriptionByReference(ctx context.Context, reference string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subscriptions {
		if s.PaymentReference == reference {
			out := s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRepository) GetCurrentSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Subscription
	for i := range r.subscriptions {
		s := r.subscriptions[i]
		if s.UserID != userID || s.Status != models.SubscriptionStatusActive {
			continue
		}
		if best == nil || s.EndDate.After(best.EndDate) {
			best = &s
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r *memoryRepository) ListRecentPayments(ctx context.Context, userID uint, limit int) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := map[uint]bool{}
	for _, s := range r.subscriptions {
		if s.UserID == userID {
			owned[s.ID] = true
		}
	}
	var out []models.Payment
	for _, p := range r.payments {
		if owned[p.SubscriptionID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Provider == event.Provider && e.ProviderEventID == event.ProviderEventID {
			out := e
			return false, &out, nil
		}
	}
	event.ID = r.id()
	r.events = append(r.events, *event)
	out := *event
	return true, &out, nil
}

func (r *memoryRepository) MarkWebhookProcessed(ctx context.Context, id uint, outcome, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			now := time.Now()
			r.events[i].ProcessedAt = &now
			r.events[i].Outcome = outcome
			r.events[i].ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryRepository) counts() (subs, payments int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscriptions), len(r.payments)
}

type fakeGateway struct {
	mu sync.Mutex

	tx        *Transaction
	verifyErr error
	order     *CheckoutOrder
	orderErr  error

	verifyCalls int
	orderCalls  int
	lastOrder   OrderRequest
}

func (g *fakeGateway) CreateOrder(ctx context.Context, in OrderRequest) (*CheckoutOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderCalls++
	g.lastOrder = in
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	out := *g.order
	return &out, nil
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, orderReference string) (*Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	out := *g.tx
	out.OrderReference = orderReference
	return &out, nil
}

func (g *fakeGateway) calls() (verify, order int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyCalls, g.orderCalls
}

type fakeUsers map[string]*models.User

func (u fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := u[models.NormalizeEmail(email)]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingMetrics struct {
	mu        sync.Mutex
	reconcile []string
	webhook   []string
}

func (m *recordingMetrics) ReconcileOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconcile = append(m.reconcile, outcome)
}

func (m *recordingMetrics) WebhookResult(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhook = append(m.webhook, status)
}

func (m *recordingMetrics) GatewayRequest(string, string, time.Duration) {}
