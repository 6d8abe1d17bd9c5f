package billing

import "testing"

func TestFindByAmount(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		amount   int64
		currency string
		wantID   string
		wantOK   bool
	}{
		{amount: 0, currency: "NGN", wantID: "talent_free", wantOK: true},
		{amount: 15, currency: "NGN", wantID: "employer_basic", wantOK: true},
		{amount: 15, currency: "ngn", wantID: "employer_basic", wantOK: true},
		{amount: 15, currency: "", wantID: "employer_basic", wantOK: true},
		// talent_pro and employer_enterprise share a price; catalog order wins.
		{amount: 50, currency: "NGN", wantID: "talent_pro", wantOK: true},
		{amount: 15, currency: "USD", wantOK: false},
		{amount: 49, currency: "NGN", wantOK: false},
		{amount: -15, currency: "NGN", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := catalog.FindByAmount(tt.amount, tt.currency)
		if ok != tt.wantOK {
			t.Fatalf("FindByAmount(%d, %q) ok = %v, want %v", tt.amount, tt.currency, ok, tt.wantOK)
		}
		if ok && got.ID != tt.wantID {
			t.Fatalf("FindByAmount(%d, %q) = %q, want %q", tt.amount, tt.currency, got.ID, tt.wantID)
		}
	}
}

func TestFindByID(t *testing.T) {
	catalog := DefaultCatalog()

	p, ok := catalog.FindByID(" Employer_Basic ")
	if !ok {
		t.Fatalf("expected employer_basic to resolve")
	}
	if p.Tier() != "EMPLOYER_BASIC" || p.Audience != AudienceEmployer || p.Price != 15 {
		t.Fatalf("unexpected plan %+v", p)
	}
	if _, ok := catalog.FindByID("gold"); ok {
		t.Fatalf("expected unknown plan to be missing")
	}
}

func TestListPlans(t *testing.T) {
	catalog := DefaultCatalog()

	if got := len(catalog.ListPlans("")); got != 4 {
		t.Fatalf("ListPlans(\"\") returned %d plans, want 4", got)
	}
	talent := catalog.ListPlans("talent")
	if len(talent) != 2 || talent[0].ID != "talent_free" || talent[1].ID != "talent_pro" {
		t.Fatalf("unexpected talent plans %+v", talent)
	}
	grouped := catalog.Grouped()
	if len(grouped[AudienceEmployer]) != 2 {
		t.Fatalf("expected two employer plans, got %d", len(grouped[AudienceEmployer]))
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	catalog := DefaultCatalog()

	plans := catalog.ListPlans(AudienceTalent)
	plans[0].Price = 999
	plans[0].Features[0] = "changed"

	p, _ := catalog.FindByID("talent_free")
	if p.Price != 0 || p.Features[0] != "Create Profile" {
		t.Fatalf("catalog was mutated through a returned plan: %+v", p)
	}
}

func TestPlanIsFree(t *testing.T) {
	catalog := DefaultCatalog()
	free, _ := catalog.FindByID("talent_free")
	pro, _ := catalog.FindByID("talent_pro")
	if !free.IsFree() || pro.IsFree() {
		t.Fatalf("unexpected IsFree results: free=%v pro=%v", free.IsFree(), pro.IsFree())
	}
}
