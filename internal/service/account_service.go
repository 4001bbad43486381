package service

import (
	"context"
	"fmt"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Industry *string `json:"industry"`
	Website  *string `json:"website"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

// --- Interface ---

type AccountService interface {
	CreateAccount(ctx context.Context, actor *model.User, req CreateAccountRequest) (*model.Account, error)
	UpdateAccount(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateAccountRequest) (*model.Account, error)
	DeleteAccount(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	ListAccounts(ctx context.Context, search string, page, limit int) ([]model.Account, int64, error)
}

type accountService struct {
	repo repository.AccountRepository
}

func NewAccountService(repo repository.AccountRepository) AccountService {
	return &accountService{repo: repo}
}

// --- Implementation ---

func (s *accountService) CreateAccount(ctx context.Context, actor *model.User, req CreateAccountRequest) (*model.Account, error) {
	if err := authz.Authorize(actor, authz.ActionAccountsCreate); err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:     req.Name,
		Industry: req.Industry,
		Website:  req.Website,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		OwnerID:  &actor.ID,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateAccountRequest) (*model.Account, error) {
	if err := authz.Authorize(actor, authz.ActionAccountsUpdate); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "account")
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Industry != nil {
		account.Industry = *req.Industry
	}
	if req.Website != nil {
		account.Website = *req.Website
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.Email != nil {
		account.Email = *req.Email
	}
	if req.Address != nil {
		account.Address = *req.Address
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionAccountsDelete); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "account")
	}
	return s.repo.Delete(ctx, id)
}

func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "account")
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, search string, page, limit int) ([]model.Account, int64, error) {
	return s.repo.List(ctx, search, page, limit)
}
