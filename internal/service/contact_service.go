package service

import (
	"context"
	"fmt"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateContactRequest struct {
	Name      string     `json:"name" binding:"required"`
	Email     string     `json:"email" binding:"required,email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	Notes     string     `json:"notes"`
	AccountID *uuid.UUID `json:"account_id"`
}

type UpdateContactRequest struct {
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Company   *string    `json:"company"`
	Notes     *string    `json:"notes"`
	AccountID *uuid.UUID `json:"account_id"`
}

// --- Interface ---

type ContactService interface {
	CreateContact(ctx context.Context, actor *model.User, req CreateContactRequest) (*model.Contact, error)
	UpdateContact(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateContactRequest) (*model.Contact, error)
	DeleteContact(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetContact(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	ListContacts(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error)
}

type contactService struct {
	repo     repository.ContactRepository
	accounts repository.AccountRepository
}

func NewContactService(repo repository.ContactRepository, accounts repository.AccountRepository) ContactService {
	return &contactService{repo: repo, accounts: accounts}
}

// --- Implementation ---

func (s *contactService) CreateContact(ctx context.Context, actor *model.User, req CreateContactRequest) (*model.Contact, error) {
	if err := authz.Authorize(actor, authz.ActionContactsCreate); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: contact with email %q already exists", apperror.ErrConflict, req.Email)
	}
	if req.AccountID != nil {
		if _, err := s.accounts.FindByID(ctx, *req.AccountID); err != nil {
			return nil, notFound(err, "account")
		}
	}

	contact := &model.Contact{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
		AccountID: req.AccountID,
		OwnerID:   &actor.ID,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) UpdateContact(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateContactRequest) (*model.Contact, error) {
	if err := authz.Authorize(actor, authz.ActionContactsUpdate); err != nil {
		return nil, err
	}

	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contact")
	}

	if req.Email != nil && *req.Email != contact.Email {
		if _, err := s.repo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("%w: contact with email %q already exists", apperror.ErrConflict, *req.Email)
		}
		contact.Email = *req.Email
	}
	if req.AccountID != nil {
		if _, err := s.accounts.FindByID(ctx, *req.AccountID); err != nil {
			return nil, notFound(err, "account")
		}
		contact.AccountID = req.AccountID
	}
	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Company != nil {
		contact.Company = *req.Company
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

// DeleteContact removes a contact; its deals cascade with it.
func (s *contactService) DeleteContact(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionContactsDelete); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "contact")
	}
	return s.repo.Delete(ctx, id)
}

func (s *contactService) GetContact(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contact")
	}
	return contact, nil
}

func (s *contactService) ListContacts(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error) {
	return s.repo.List(ctx, search, page, limit)
}
