package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"crm-backend/internal/model"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type leadFixture struct {
	leads    *fakeLeadRepo
	accounts *fakeAccountRepo
	contacts *fakeContactRepo
	deals    *fakeDealRepo
	events   *recordingPublisher
	tx       *fakeTx
	svc      LeadService
	admin    *model.User
}

func newLeadFixture(t *testing.T) *leadFixture {
	t.Helper()
	f := &leadFixture{
		leads:    newFakeLeadRepo(),
		accounts: newFakeAccountRepo(),
		contacts: newFakeContactRepo(),
		deals:    newFakeDealRepo(),
		events:   &recordingPublisher{},
		tx:       &fakeTx{},
		admin:    adminActor(),
	}
	f.svc = NewLeadService(f.leads, f.accounts, f.contacts, f.deals, f.tx, f.events)
	return f
}

func (f *leadFixture) seedLead(t *testing.T, lead model.Lead) *model.Lead {
	t.Helper()
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	if err := f.leads.Create(context.Background(), &lead); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return &lead
}

func TestCreateLeadDetectsDuplicates(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateLead(ctx, f.admin, CreateLeadRequest{
		FirstName: "Mara", LastName: "Voss", Email: "mara@voss.test", Phone: "555-0101",
	}); err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	// Same email.
	_, err := f.svc.CreateLead(ctx, f.admin, CreateLeadRequest{
		FirstName: "Other", LastName: "Person", Email: "mara@voss.test",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate email: got %v, want ErrConflict", err)
	}

	// Same phone, different email.
	_, err = f.svc.CreateLead(ctx, f.admin, CreateLeadRequest{
		FirstName: "Other", LastName: "Person", Email: "other@voss.test", Phone: "555-0101",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate phone: got %v, want ErrConflict", err)
	}

	// No phone submitted: only the email is matched.
	lead, err := f.svc.CreateLead(ctx, f.admin, CreateLeadRequest{
		FirstName: "Third", LastName: "Person", Email: "third@voss.test",
	})
	if err != nil {
		t.Fatalf("CreateLead without phone: %v", err)
	}
	if lead.Status != model.LeadStatusNew {
		t.Fatalf("status = %q, want default %q", lead.Status, model.LeadStatusNew)
	}
	if lead.OwnerID == nil || *lead.OwnerID != f.admin.ID {
		t.Fatalf("owner = %v, want actor default", lead.OwnerID)
	}
}

func TestConvertLeadDefaults(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{
		FirstName: "Mara", LastName: "Voss",
		Email: "mara@voss.test", Phone: "555-0101",
		Company: "Voss Industrie",
	})

	result, err := f.svc.ConvertLead(ctx, f.admin, lead.ID, ConvertLeadRequest{})
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("status = %q", result.Status)
	}

	account, err := f.accounts.FindByID(ctx, result.AccountID)
	if err != nil {
		t.Fatalf("account not created: %v", err)
	}
	if account.Name != "Voss Industrie" {
		t.Fatalf("account name = %q, want company name", account.Name)
	}
	if account.Email != lead.Email || account.Phone != lead.Phone {
		t.Fatalf("account contact data not carried over: %+v", account)
	}

	contact, err := f.contacts.FindByID(ctx, result.ContactID)
	if err != nil {
		t.Fatalf("contact not created: %v", err)
	}
	if contact.Name != "Mara Voss" {
		t.Fatalf("contact name = %q, want lead full name", contact.Name)
	}
	if contact.AccountID == nil || *contact.AccountID != account.ID {
		t.Fatalf("contact not linked to the new account: %v", contact.AccountID)
	}
	wantNote := fmt.Sprintf("Converted from Lead #%s", lead.ID)
	if contact.Notes != wantNote {
		t.Fatalf("contact notes = %q, want %q", contact.Notes, wantNote)
	}

	deal, err := f.deals.FindByID(ctx, result.DealID)
	if err != nil {
		t.Fatalf("deal not created: %v", err)
	}
	if deal.Title != "Voss Industrie Deal" {
		t.Fatalf("deal title = %q", deal.Title)
	}
	if !deal.Value.Equal(decimal.Zero) {
		t.Fatalf("deal value = %s, want 0", deal.Value)
	}
	if deal.Stage != model.DealStageProspecting {
		t.Fatalf("deal stage = %q, want prospecting", deal.Stage)
	}
	if deal.ContactID != contact.ID || deal.AccountID == nil || *deal.AccountID != account.ID {
		t.Fatalf("deal links wrong: contact=%s account=%v", deal.ContactID, deal.AccountID)
	}
	// Conversion does not place the deal on a pipeline.
	if deal.PipelineID != nil || deal.StageID != nil {
		t.Fatalf("converted deal should be unstaged, got pipeline=%v stage=%v", deal.PipelineID, deal.StageID)
	}

	got, _ := f.leads.FindByID(ctx, lead.ID)
	if got.Status != model.LeadStatusConverted {
		t.Fatalf("lead status = %q, want Converted", got.Status)
	}
	if got.ConvertedAt == nil {
		t.Fatal("converted_at not set")
	}
	if got.ConvertedToAccountID == nil || *got.ConvertedToAccountID != account.ID ||
		got.ConvertedToContactID == nil || *got.ConvertedToContactID != contact.ID ||
		got.ConvertedToDealID == nil || *got.ConvertedToDealID != deal.ID {
		t.Fatalf("conversion links missing on lead: %+v", got)
	}

	if len(f.events.events) != 1 || f.events.events[0] != EventLeadConverted {
		t.Fatalf("events = %v, want one %q", f.events.events, EventLeadConverted)
	}
}

func TestConvertLeadWithoutCompanyUsesFullName(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{FirstName: "Mara", LastName: "Voss", Email: "mara@voss.test"})

	result, err := f.svc.ConvertLead(ctx, f.admin, lead.ID, ConvertLeadRequest{})
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}

	account, _ := f.accounts.FindByID(ctx, result.AccountID)
	if account.Name != "Mara Voss" {
		t.Fatalf("account name = %q, want full name fallback", account.Name)
	}
	deal, _ := f.deals.FindByID(ctx, result.DealID)
	if deal.Title != "Mara Voss Deal" {
		t.Fatalf("deal title = %q", deal.Title)
	}
}

func TestConvertLeadOverrides(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{
		FirstName: "Mara", LastName: "Voss",
		Email: "mara@voss.test", Company: "Voss Industrie",
	})

	accountName := "Voss Industrie GmbH"
	industry := "Manufacturing"
	contactPhone := "555-0199"
	value := decimal.RequireFromString("90000")
	result, err := f.svc.ConvertLead(ctx, f.admin, lead.ID, ConvertLeadRequest{
		Account: &AccountOverride{Name: &accountName, Industry: &industry},
		Contact: &ContactOverride{Phone: &contactPhone},
		Deal:    &DealOverride{Value: &value},
	})
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}

	account, _ := f.accounts.FindByID(ctx, result.AccountID)
	if account.Name != accountName || account.Industry != industry {
		t.Fatalf("account overrides not applied: %+v", account)
	}
	// Non-overridden fields keep their derived defaults.
	if account.Email != lead.Email {
		t.Fatalf("account email = %q, want derived %q", account.Email, lead.Email)
	}

	contact, _ := f.contacts.FindByID(ctx, result.ContactID)
	if contact.Phone != contactPhone {
		t.Fatalf("contact phone = %q, want override", contact.Phone)
	}
	if contact.Name != "Mara Voss" {
		t.Fatalf("contact name = %q, want derived default", contact.Name)
	}

	// The deal title derives from the PRE-override account name: overrides
	// never leak into each other's defaults.
	deal, _ := f.deals.FindByID(ctx, result.DealID)
	if deal.Title != "Voss Industrie Deal" {
		t.Fatalf("deal title = %q, want derived from original company name", deal.Title)
	}
	if !deal.Value.Equal(value) {
		t.Fatalf("deal value = %s, want override %s", deal.Value, value)
	}
}

func TestConvertLeadTwiceFails(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{FirstName: "Mara", LastName: "Voss", Email: "mara@voss.test"})

	if _, err := f.svc.ConvertLead(ctx, f.admin, lead.ID, ConvertLeadRequest{}); err != nil {
		t.Fatalf("first ConvertLead: %v", err)
	}

	accountsBefore := len(f.accounts.accounts)
	contactsBefore := len(f.contacts.contacts)
	dealsBefore := len(f.deals.deals)

	_, err := f.svc.ConvertLead(ctx, f.admin, lead.ID, ConvertLeadRequest{})
	if !errors.Is(err, apperror.ErrInvalidState) {
		t.Fatalf("second convert: got %v, want ErrInvalidState", err)
	}

	if len(f.accounts.accounts) != accountsBefore ||
		len(f.contacts.contacts) != contactsBefore ||
		len(f.deals.deals) != dealsBefore {
		t.Fatal("second convert must perform zero writes")
	}
}

func TestConvertLeadTransactionFailure(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{FirstName: "Mara", LastName: "Voss", Email: "mara@voss.test"})
	f.deals.createErr = errors.New("insert failed: value out of range")

	_, err := f.svc.ConvertLead(ctx, f.admin, lead.ID, ConvertLeadRequest{})
	if !errors.Is(err, apperror.ErrTransactionFailure) {
		t.Fatalf("got %v, want ErrTransactionFailure", err)
	}
	if !strings.Contains(err.Error(), "insert failed") {
		t.Fatalf("cause not preserved in %q", err.Error())
	}

	// The lead must not be marked converted when the transaction failed.
	got, _ := f.leads.FindByID(ctx, lead.ID)
	if got.Status == model.LeadStatusConverted {
		t.Fatal("lead marked converted despite failed transaction")
	}
	if len(f.events.events) != 0 {
		t.Fatal("no event may be published for a failed conversion")
	}
}

func TestConvertLeadForbidden(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{FirstName: "Mara", LastName: "Voss", Email: "mara@voss.test"})

	_, err := f.svc.ConvertLead(ctx, viewerActor(), lead.ID, ConvertLeadRequest{})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	if f.tx.calls != 0 {
		t.Fatal("forbidden convert must not open a transaction")
	}
}

func TestConvertLeadNotFound(t *testing.T) {
	f := newLeadFixture(t)
	_, err := f.svc.ConvertLead(context.Background(), f.admin, uuid.New(), ConvertLeadRequest{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateLeadDuplicateCheckExcludesSelf(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead := f.seedLead(t, model.Lead{FirstName: "Mara", LastName: "Voss", Email: "mara@voss.test", Phone: "555-0101"})
	f.seedLead(t, model.Lead{FirstName: "Ida", LastName: "Brandt", Email: "ida@brandt.test", Phone: "555-0202"})

	// Re-submitting the lead's own email is not a conflict.
	own := "mara@voss.test"
	if _, err := f.svc.UpdateLead(ctx, f.admin, lead.ID, UpdateLeadRequest{Email: &own}); err != nil {
		t.Fatalf("UpdateLead with own email: %v", err)
	}

	// Taking another lead's phone is.
	taken := "555-0202"
	_, err := f.svc.UpdateLead(ctx, f.admin, lead.ID, UpdateLeadRequest{Phone: &taken})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}
