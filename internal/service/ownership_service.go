package service

import (
	"context"
	"fmt"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
)

// --- Interface ---

// OwnershipService reassigns the owner of a CRM entity and appends one audit
// note recording the change. Entity mutation and note insert commit together.
type OwnershipService interface {
	ReassignOwner(ctx context.Context, actor *model.User, entityType string, entityID, newOwnerID uuid.UUID) error
}

type ownershipService struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	contacts repository.ContactRepository
	deals    repository.DealRepository
	leads    repository.LeadRepository
	notes    repository.NoteRepository
	tx       repository.TransactionManager
}

func NewOwnershipService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	contacts repository.ContactRepository,
	deals repository.DealRepository,
	leads repository.LeadRepository,
	notes repository.NoteRepository,
	tx repository.TransactionManager,
) OwnershipService {
	return &ownershipService{
		users:    users,
		accounts: accounts,
		contacts: contacts,
		deals:    deals,
		leads:    leads,
		notes:    notes,
		tx:       tx,
	}
}

// --- Implementation ---

func (s *ownershipService) ReassignOwner(ctx context.Context, actor *model.User, entityType string, entityID, newOwnerID uuid.UUID) error {
	action, err := authz.UpdateActionFor(entityType)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, action); err != nil {
		return err
	}

	newOwner, err := s.users.FindByID(ctx, newOwnerID)
	if err != nil {
		return notFound(err, "user")
	}

	oldOwnerID, update, err := s.loadEntity(ctx, entityType, entityID)
	if err != nil {
		return err
	}

	note := &model.Note{
		Content: fmt.Sprintf("Owner changed from %s to %s by %s",
			formatOwner(oldOwnerID), newOwner.ID, actor.Email),
		RelatedToType: entityType,
		RelatedToID:   entityID,
		AuthorID:      &actor.ID,
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := update(txCtx, newOwner.ID); err != nil {
			return fmt.Errorf("failed to reassign owner: %w", err)
		}
		if err := s.notes.Create(txCtx, note); err != nil {
			return fmt.Errorf("failed to record ownership note: %w", err)
		}
		return nil
	})
}

// loadEntity fetches the entity, returning its current owner and a closure
// that persists the new owner within the caller's transaction context.
func (s *ownershipService) loadEntity(ctx context.Context, entityType string, entityID uuid.UUID) (*uuid.UUID, func(context.Context, uuid.UUID) error, error) {
	switch entityType {
	case model.RelatedToAccount:
		account, err := s.accounts.FindByID(ctx, entityID)
		if err != nil {
			return nil, nil, notFound(err, "account")
		}
		return account.OwnerID, func(txCtx context.Context, ownerID uuid.UUID) error {
			account.OwnerID = &ownerID
			return s.accounts.Update(txCtx, account)
		}, nil
	case model.RelatedToContact:
		contact, err := s.contacts.FindByID(ctx, entityID)
		if err != nil {
			return nil, nil, notFound(err, "contact")
		}
		return contact.OwnerID, func(txCtx context.Context, ownerID uuid.UUID) error {
			contact.OwnerID = &ownerID
			return s.contacts.Update(txCtx, contact)
		}, nil
	case model.RelatedToDeal:
		deal, err := s.deals.FindByID(ctx, entityID)
		if err != nil {
			return nil, nil, notFound(err, "deal")
		}
		return deal.OwnerID, func(txCtx context.Context, ownerID uuid.UUID) error {
			deal.OwnerID = &ownerID
			return s.deals.Update(txCtx, deal)
		}, nil
	case model.RelatedToLead:
		lead, err := s.leads.FindByID(ctx, entityID)
		if err != nil {
			return nil, nil, notFound(err, "lead")
		}
		return lead.OwnerID, func(txCtx context.Context, ownerID uuid.UUID) error {
			lead.OwnerID = &ownerID
			return s.leads.Update(txCtx, lead)
		}, nil
	}
	// Unreachable in practice: UpdateActionFor already rejected the type.
	return nil, nil, fmt.Errorf("unknown entity type %q", entityType)
}

func formatOwner(id *uuid.UUID) string {
	if id == nil {
		return "unassigned"
	}
	return id.String()
}
