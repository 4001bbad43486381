package service

import (
	"context"
	"errors"
	"fmt"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions" binding:"required"`
}

type UpdateRoleRequest struct {
	Name        *string   `json:"name"`
	Permissions *[]string `json:"permissions"`
}

// --- Interface ---

type RoleService interface {
	CreateRole(ctx context.Context, actor *model.User, req CreateRoleRequest) (*model.Role, error)
	UpdateRole(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateRoleRequest) (*model.Role, error)
	// DeleteRole fails with Conflict while any user still references the role.
	DeleteRole(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetRole(ctx context.Context, id uuid.UUID) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	// SeedDefaults inserts the built-in roles when they are absent.
	SeedDefaults(ctx context.Context) error
}

type roleService struct {
	repo  repository.RoleRepository
	users repository.UserRepository
}

func NewRoleService(repo repository.RoleRepository, users repository.UserRepository) RoleService {
	return &roleService{repo: repo, users: users}
}

// --- Implementation ---

func (s *roleService) CreateRole(ctx context.Context, actor *model.User, req CreateRoleRequest) (*model.Role, error) {
	if err := authz.Authorize(actor, authz.ActionRolesManage); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: role %q already exists", apperror.ErrConflict, req.Name)
	}

	role := &model.Role{Name: req.Name, Permissions: req.Permissions}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (s *roleService) UpdateRole(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateRoleRequest) (*model.Role, error) {
	if err := authz.Authorize(actor, authz.ActionRolesManage); err != nil {
		return nil, err
	}

	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "role")
	}

	if req.Name != nil && *req.Name != role.Name {
		if _, err := s.repo.FindByName(ctx, *req.Name); err == nil {
			return nil, fmt.Errorf("%w: role %q already exists", apperror.ErrConflict, *req.Name)
		}
		role.Name = *req.Name
	}
	if req.Permissions != nil {
		role.Permissions = *req.Permissions
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

func (s *roleService) DeleteRole(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionRolesManage); err != nil {
		return err
	}

	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "role")
	}

	count, err := s.users.CountByRole(ctx, role.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: role %q has assigned users", apperror.ErrConflict, role.Name)
	}

	return s.repo.Delete(ctx, role.ID)
}

func (s *roleService) GetRole(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "role")
	}
	return role, nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.repo.ListAll(ctx)
}

func (s *roleService) SeedDefaults(ctx context.Context) error {
	defaults := []model.Role{
		{Name: "Admin", Permissions: []string{model.PermissionWildcard}},
		{Name: "Sales Rep", Permissions: []string{
			authz.ActionContactsRead, authz.ActionContactsCreate, authz.ActionContactsUpdate,
			authz.ActionDealsRead, authz.ActionDealsCreate, authz.ActionDealsUpdate, authz.ActionDealsMove,
			authz.ActionLeadsRead, authz.ActionLeadsCreate, authz.ActionLeadsUpdate, authz.ActionLeadsConvert,
			authz.ActionAccountsRead, authz.ActionAccountsCreate, authz.ActionAccountsUpdate,
			authz.ActionActivitiesRead, authz.ActionActivitiesCreate, authz.ActionActivitiesUpdate,
			authz.ActionNotesRead, authz.ActionNotesCreate, authz.ActionNotesUpdate,
		}},
		{Name: "Viewer", Permissions: []string{
			authz.ActionContactsRead, authz.ActionDealsRead, authz.ActionLeadsRead,
			authz.ActionAccountsRead, authz.ActionActivitiesRead, authz.ActionNotesRead,
		}},
	}

	for i := range defaults {
		_, err := s.repo.FindByName(ctx, defaults[i].Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("failed to seed role %q: %w", defaults[i].Name, err)
		}
	}
	return nil
}
