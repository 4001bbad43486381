package service

import (
	"context"
	"fmt"
	"time"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateLeadRequest struct {
	FirstName string     `json:"first_name" binding:"required"`
	LastName  string     `json:"last_name" binding:"required"`
	Email     string     `json:"email" binding:"required,email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	Status    string     `json:"status"`
	Source    string     `json:"source"`
	OwnerID   *uuid.UUID `json:"owner_id"`
}

type UpdateLeadRequest struct {
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Company   *string    `json:"company"`
	Status    *string    `json:"status"`
	Source    *string    `json:"source"`
	OwnerID   *uuid.UUID `json:"owner_id"`
}

// Conversion overrides are merged field-by-field on top of the derived
// defaults: only explicitly-set fields replace their default, never the
// whole object. Overrides cannot see each other's values.

type AccountOverride struct {
	Name     *string `json:"name"`
	Industry *string `json:"industry"`
	Website  *string `json:"website"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

type ContactOverride struct {
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Company   *string    `json:"company"`
	Notes     *string    `json:"notes"`
	AccountID *uuid.UUID `json:"account_id"`
}

type DealOverride struct {
	Title      *string          `json:"title"`
	Value      *decimal.Decimal `json:"value"`
	Stage      *string          `json:"stage"`
	PipelineID *uuid.UUID       `json:"pipeline_id"`
	StageID    *uuid.UUID       `json:"stage_id"`
}

type ConvertLeadRequest struct {
	Account *AccountOverride `json:"account"`
	Contact *ContactOverride `json:"contact"`
	Deal    *DealOverride    `json:"deal"`
}

type ConvertLeadResult struct {
	LeadID    uuid.UUID `json:"lead_id"`
	ContactID uuid.UUID `json:"contact_id"`
	AccountID uuid.UUID `json:"account_id"`
	DealID    uuid.UUID `json:"deal_id"`
	Status    string    `json:"status"`
}

// --- Interface ---

// LeadService owns lead CRUD and the one-time atomic conversion of a lead
// into an Account, a Contact, and a Deal.
type LeadService interface {
	CreateLead(ctx context.Context, actor *model.User, req CreateLeadRequest) (*model.Lead, error)
	UpdateLead(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateLeadRequest) (*model.Lead, error)
	DeleteLead(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetLead(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	ListLeads(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, int64, error)

	// ConvertLead creates Account, Contact, and Deal from the lead inside one
	// transaction and marks the lead Converted. Converting an already
	// converted lead is an error and performs zero writes.
	ConvertLead(ctx context.Context, actor *model.User, leadID uuid.UUID, req ConvertLeadRequest) (*ConvertLeadResult, error)
}

type leadService struct {
	repo     repository.LeadRepository
	accounts repository.AccountRepository
	contacts repository.ContactRepository
	deals    repository.DealRepository
	tx       repository.TransactionManager
	events   EventPublisher
}

func NewLeadService(
	repo repository.LeadRepository,
	accounts repository.AccountRepository,
	contacts repository.ContactRepository,
	deals repository.DealRepository,
	tx repository.TransactionManager,
	events EventPublisher,
) LeadService {
	return &leadService{repo: repo, accounts: accounts, contacts: contacts, deals: deals, tx: tx, events: events}
}

// --- Implementation ---

func (s *leadService) CreateLead(ctx context.Context, actor *model.User, req CreateLeadRequest) (*model.Lead, error) {
	if err := authz.Authorize(actor, authz.ActionLeadsCreate); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindDuplicate(ctx, req.Email, req.Phone, nil); err == nil {
		return nil, fmt.Errorf("%w: lead already exists (id %s)", apperror.ErrConflict, existing.ID)
	}

	status := req.Status
	if status == "" {
		status = model.LeadStatusNew
	}

	lead := &model.Lead{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Status:    status,
		Source:    req.Source,
		OwnerID:   req.OwnerID,
	}
	if lead.OwnerID == nil {
		lead.OwnerID = &actor.ID
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (s *leadService) UpdateLead(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateLeadRequest) (*model.Lead, error) {
	if err := authz.Authorize(actor, authz.ActionLeadsUpdate); err != nil {
		return nil, err
	}

	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "lead")
	}

	if req.Email != nil || req.Phone != nil {
		email := lead.Email
		phone := lead.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if _, err := s.repo.FindDuplicate(ctx, email, phone, &lead.ID); err == nil {
			return nil, fmt.Errorf("%w: another lead with this email or phone already exists", apperror.ErrConflict)
		}
	}

	if req.FirstName != nil {
		lead.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		lead.LastName = *req.LastName
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Company != nil {
		lead.Company = *req.Company
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.OwnerID != nil {
		lead.OwnerID = req.OwnerID
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

func (s *leadService) DeleteLead(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionLeadsDelete); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "lead")
	}
	return s.repo.Delete(ctx, id)
}

func (s *leadService) GetLead(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "lead")
	}
	return lead, nil
}

func (s *leadService) ListLeads(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *leadService) ConvertLead(ctx context.Context, actor *model.User, leadID uuid.UUID, req ConvertLeadRequest) (*ConvertLeadResult, error) {
	if err := authz.Authorize(actor, authz.ActionLeadsConvert); err != nil {
		return nil, err
	}

	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, notFound(err, "lead")
	}
	if lead.Status == model.LeadStatusConverted {
		return nil, fmt.Errorf("%w: lead is already converted", apperror.ErrInvalidState)
	}

	var (
		account model.Account
		contact model.Contact
		deal    model.Deal
	)

	// Ordering matters: the contact references the account and the deal
	// references both, so the three inserts and the lead update run inside
	// one transaction. Any failure rolls everything back.
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		accountName := lead.Company
		if accountName == "" {
			accountName = lead.FullName()
		}
		account = model.Account{
			Name:    accountName,
			Phone:   lead.Phone,
			Email:   lead.Email,
			OwnerID: &actor.ID,
		}
		applyAccountOverride(&account, req.Account)
		if err := s.accounts.Create(txCtx, &account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		contact = model.Contact{
			Name:      lead.FullName(),
			Email:     lead.Email,
			Phone:     lead.Phone,
			Company:   lead.Company,
			Notes:     fmt.Sprintf("Converted from Lead #%s", lead.ID),
			AccountID: &account.ID,
			OwnerID:   &actor.ID,
		}
		applyContactOverride(&contact, req.Contact)
		if err := s.contacts.Create(txCtx, &contact); err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}

		// The default title uses the derived account name, not the overridden
		// one: overrides never see each other's values.
		deal = model.Deal{
			Title:     accountName + " Deal",
			Value:     decimal.Zero,
			Stage:     model.DealStageProspecting,
			ContactID: contact.ID,
			AccountID: &account.ID,
			OwnerID:   &actor.ID,
		}
		// This path deliberately skips default pipeline/stage assignment;
		// the deal stays unstaged unless the override supplies a binding.
		applyDealOverride(&deal, req.Deal)
		if err := s.deals.Create(txCtx, &deal); err != nil {
			return fmt.Errorf("failed to create deal: %w", err)
		}

		now := time.Now().UTC()
		lead.Status = model.LeadStatusConverted
		lead.ConvertedAt = &now
		lead.ConvertedToAccountID = &account.ID
		lead.ConvertedToContactID = &contact.ID
		lead.ConvertedToDealID = &deal.ID
		if err := s.repo.Update(txCtx, lead); err != nil {
			return fmt.Errorf("failed to mark lead converted: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrTransactionFailure, txErr)
	}

	if s.events != nil {
		s.events.Publish(EventLeadConverted, map[string]interface{}{
			"lead_id":    lead.ID,
			"contact_id": contact.ID,
			"account_id": account.ID,
			"deal_id":    deal.ID,
		})
	}

	return &ConvertLeadResult{
		LeadID:    lead.ID,
		ContactID: contact.ID,
		AccountID: account.ID,
		DealID:    deal.ID,
		Status:    "success",
	}, nil
}

func applyAccountOverride(a *model.Account, o *AccountOverride) {
	if o == nil {
		return
	}
	if o.Name != nil {
		a.Name = *o.Name
	}
	if o.Industry != nil {
		a.Industry = *o.Industry
	}
	if o.Website != nil {
		a.Website = *o.Website
	}
	if o.Phone != nil {
		a.Phone = *o.Phone
	}
	if o.Email != nil {
		a.Email = *o.Email
	}
	if o.Address != nil {
		a.Address = *o.Address
	}
}

func applyContactOverride(c *model.Contact, o *ContactOverride) {
	if o == nil {
		return
	}
	if o.Name != nil {
		c.Name = *o.Name
	}
	if o.Email != nil {
		c.Email = *o.Email
	}
	if o.Phone != nil {
		c.Phone = *o.Phone
	}
	if o.Company != nil {
		c.Company = *o.Company
	}
	if o.Notes != nil {
		c.Notes = *o.Notes
	}
	if o.AccountID != nil {
		c.AccountID = o.AccountID
	}
}

func applyDealOverride(d *model.Deal, o *DealOverride) {
	if o == nil {
		return
	}
	if o.Title != nil {
		d.Title = *o.Title
	}
	if o.Value != nil {
		d.Value = *o.Value
	}
	if o.Stage != nil {
		d.Stage = *o.Stage
	}
	if o.PipelineID != nil {
		d.PipelineID = o.PipelineID
	}
	if o.StageID != nil {
		d.StageID = o.StageID
	}
}
