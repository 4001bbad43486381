package service

import (
	"context"
	"fmt"
	"testing"

	"crm-backend/internal/model"

	"github.com/shopspring/decimal"
)

type searchFixture struct {
	leads    *fakeLeadRepo
	contacts *fakeContactRepo
	accounts *fakeAccountRepo
	deals    *fakeDealRepo
	svc      SearchService
}

func newSearchFixture() *searchFixture {
	f := &searchFixture{
		leads:    newFakeLeadRepo(),
		contacts: newFakeContactRepo(),
		accounts: newFakeAccountRepo(),
		deals:    newFakeDealRepo(),
	}
	f.svc = NewSearchService(f.leads, f.contacts, f.accounts, f.deals)
	return f
}

func hitsByType(hits []SearchHit) map[string][]SearchHit {
	out := map[string][]SearchHit{}
	for _, h := range hits {
		out[h.Type] = append(out[h.Type], h)
	}
	return out
}

func TestGlobalSearchReturnsTypedHits(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	lead := &model.Lead{FirstName: "Ada", LastName: "Acme", Email: "ada@acme.test", Company: "Acme Corp", Status: model.LeadStatusNew}
	if err := f.leads.Create(ctx, lead); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	contact := &model.Contact{Name: "Bob Acme", Email: "bob@acme.test", Company: "Acme Corp"}
	if err := f.contacts.Create(ctx, contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	account := &model.Account{Name: "Acme Corp", Industry: "Manufacturing"}
	if err := f.accounts.Create(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	deal := &model.Deal{Title: "Acme Expansion", Value: decimal.NewFromInt(15000), Stage: model.DealStageProposal}
	if err := f.deals.Create(ctx, deal); err != nil {
		t.Fatalf("seed deal: %v", err)
	}
	// Non-matching rows must not surface.
	if err := f.leads.Create(ctx, &model.Lead{FirstName: "Zed", LastName: "Other", Email: "zed@other.test", Status: model.LeadStatusNew}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	hits, err := f.svc.GlobalSearch(ctx, "acme")
	if err != nil {
		t.Fatalf("GlobalSearch: %v", err)
	}
	if len(hits) != 4 {
		t.Fatalf("got %d hits, want 4", len(hits))
	}

	byType := hitsByType(hits)
	l := byType["lead"]
	if len(l) != 1 || l[0].ID != lead.ID || l[0].Title != "Ada Acme" || l[0].Subtitle != "Acme Corp" || l[0].Status != model.LeadStatusNew {
		t.Fatalf("lead hit = %+v", l)
	}
	c := byType["contact"]
	if len(c) != 1 || c[0].ID != contact.ID || c[0].Title != "Bob Acme" || c[0].Subtitle != "Acme Corp" || c[0].Status != "" {
		t.Fatalf("contact hit = %+v", c)
	}
	a := byType["account"]
	if len(a) != 1 || a[0].ID != account.ID || a[0].Title != "Acme Corp" || a[0].Subtitle != "Manufacturing" {
		t.Fatalf("account hit = %+v", a)
	}
	d := byType["deal"]
	if len(d) != 1 || d[0].ID != deal.ID || d[0].Title != "Acme Expansion" || d[0].Subtitle != "Value: $15000" || d[0].Status != model.DealStageProposal {
		t.Fatalf("deal hit = %+v", d)
	}
}

func TestGlobalSearchSubtitleFallsBackToEmail(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	if err := f.leads.Create(ctx, &model.Lead{FirstName: "Ada", LastName: "Solo", Email: "ada@solo.test", Status: model.LeadStatusNew}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	if err := f.contacts.Create(ctx, &model.Contact{Name: "Solo Contact", Email: "solo@contact.test"}); err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	hits, err := f.svc.GlobalSearch(ctx, "solo")
	if err != nil {
		t.Fatalf("GlobalSearch: %v", err)
	}
	byType := hitsByType(hits)
	if got := byType["lead"][0].Subtitle; got != "ada@solo.test" {
		t.Fatalf("lead subtitle = %q, want email fallback", got)
	}
	if got := byType["contact"][0].Subtitle; got != "solo@contact.test" {
		t.Fatalf("contact subtitle = %q, want email fallback", got)
	}
}

func TestGlobalSearchCapsHitsPerType(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		lead := &model.Lead{
			FirstName: fmt.Sprintf("Lead%d", i),
			LastName:  "Widget",
			Email:     fmt.Sprintf("lead%d@widget.test", i),
			Status:    model.LeadStatusNew,
		}
		if err := f.leads.Create(ctx, lead); err != nil {
			t.Fatalf("seed lead: %v", err)
		}
	}
	if err := f.deals.Create(ctx, &model.Deal{Title: "Widget Deal", Value: decimal.Zero, Stage: model.DealStageProspecting}); err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	hits, err := f.svc.GlobalSearch(ctx, "widget")
	if err != nil {
		t.Fatalf("GlobalSearch: %v", err)
	}
	byType := hitsByType(hits)
	if len(byType["lead"]) != 5 {
		t.Fatalf("got %d lead hits, want cap of 5", len(byType["lead"]))
	}
	if len(byType["deal"]) != 1 {
		t.Fatalf("got %d deal hits, want 1", len(byType["deal"]))
	}
}

func TestGlobalSearchNoMatchesReturnsEmpty(t *testing.T) {
	f := newSearchFixture()

	hits, err := f.svc.GlobalSearch(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("GlobalSearch: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", hits)
	}
}
