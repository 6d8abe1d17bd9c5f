package billing

import (
	"strings"
)

const (
	AudienceTalent   = "TALENT"
	AudienceEmployer = "EMPLOYER"

	CurrencyNGN = "NGN"
)

// Plan is one entry of the static subscription catalog. Price is expressed in
// the same whole-unit amount the gateway reports back on verification.
type Plan struct {
	ID       string   `json:"id"`
	Audience string   `json:"audience"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	Currency string   `json:"currency"`
	Features []string `json:"features"`
}

// Tier is the normalized identifier stored on a subscription.
func (p Plan) Tier() string {
	return strings.ToUpper(p.ID)
}

// IsFree reports whether activation bypasses the gateway.
func (p Plan) IsFree() bool {
	return p.Price == 0
}

// Catalog is an immutable, ordered plan table. Lookups return copies so
// callers cannot mutate the shared table.
type Catalog struct {
	plans []Plan
}

// NewCatalog builds a catalog from plans in lookup order.
func NewCatalog(plans ...Plan) *Catalog {
	c := &Catalog{plans: make([]Plan, 0, len(plans))}
	for _, p := range plans {
		c.plans = append(c.plans, clonePlan(p))
	}
	return c
}

// DefaultCatalog returns the production plan table. Talent plans come first,
// which decides the tie when a talent and an employer plan share a price.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Plan{
			ID:       "talent_free",
			Audience: AudienceTalent,
			Name:     "Basic Talent",
			Price:    0,
			Currency: CurrencyNGN,
			Features: []string{"Create Profile", "Apply to 3 jobs/month", "Basic Support"},
		},
		Plan{
			ID:       "talent_pro",
			Audience: AudienceTalent,
			Name:     "Pro Talent",
			Price:    50,
			Currency: CurrencyNGN,
			Features: []string{"Unlimited Applications", "Featured Profile", "Priority Support"},
		},
		Plan{
			ID:       "employer_basic",
			Audience: AudienceEmployer,
			Name:     "Startup",
			Price:    15,
			Currency: CurrencyNGN,
			Features: []string{"Post 3 Jobs", "View 50 Candidates", "Basic Analytics"},
		},
		Plan{
			ID:       "employer_enterprise",
			Audience: AudienceEmployer,
			Name:     "Enterprise",
			Price:    50,
			Currency: CurrencyNGN,
			Features: []string{"Unlimited Jobs", "Unlimited Candidates", "Dedicated Account Manager"},
		},
	)
}

// ListPlans returns the plans for audience in catalog order. An empty
// audience returns every plan.
func (c *Catalog) ListPlans(audience string) []Plan {
	a := NormalizeAudience(audience)
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		if a != "" && p.Audience != a {
			continue
		}
		out = append(out, clonePlan(p))
	}
	return out
}

// Grouped returns the catalog keyed by audience.
func (c *Catalog) Grouped() map[string][]Plan {
	return map[string][]Plan{
		AudienceTalent:   c.ListPlans(AudienceTalent),
		AudienceEmployer: c.ListPlans(AudienceEmployer),
	}
}

// FindByID resolves a plan identifier, case-insensitively.
func (c *Catalog) FindByID(id string) (Plan, bool) {
	want := strings.ToLower(strings.TrimSpace(id))
	for _, p := range c.plans {
		if p.ID == want {
			return clonePlan(p), true
		}
	}
	return Plan{}, false
}

// FindByAmount returns the first plan in catalog order with exactly this
// price and currency.
func (c *Catalog) FindByAmount(amount int64, currency string) (Plan, bool) {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	for _, p := range c.plans {
		if p.Price != amount {
			continue
		}
		if cur != "" && p.Currency != cur {
			continue
		}
		return clonePlan(p), true
	}
	return Plan{}, false
}

// NormalizeAudience returns TALENT, EMPLOYER or "" for anything else.
func NormalizeAudience(audience string) string {
	switch strings.ToUpper(strings.TrimSpace(audience)) {
	case AudienceTalent:
		return AudienceTalent
	case AudienceEmployer:
		return AudienceEmployer
	default:
		return ""
	}
}

func clonePlan(p Plan) Plan {
	p.Features = append([]string(nil), p.Features...)
	return p
}
