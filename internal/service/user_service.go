package service

import (
	"context"
	"fmt"
	"os"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	Email     string    `json:"email" binding:"required,email"`
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Password  string    `json:"password" binding:"required,min=8"`
	RoleID    uuid.UUID `json:"role_id" binding:"required"`
}

type UpdateUserRequest struct {
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Password  *string    `json:"password"`
	RoleID    *uuid.UUID `json:"role_id"`
	IsActive  *bool      `json:"is_active"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"access_token"`
	Type  string `json:"token_type"`
}

// --- Interface ---

type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	CreateUser(ctx context.Context, actor *model.User, req CreateUserRequest) (*model.User, error)
	UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error)
}

type userService struct {
	repo  repository.UserRepository
	roles repository.RoleRepository
}

func NewUserService(repo repository.UserRepository, roles repository.RoleRepository) UserService {
	return &userService{repo: repo, roles: roles}
}

// --- Implementation ---

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperror.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperror.ErrUnauthenticated)
	}

	if !user.IsActive {
		return nil, apperror.ErrInactiveAccount
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
	})
	tokenString, err := token.SignedString(jwtSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{Token: tokenString, Type: "bearer"}, nil
}

func (s *userService) CreateUser(ctx context.Context, actor *model.User, req CreateUserRequest) (*model.User, error) {
	if err := authz.Authorize(actor, authz.ActionUsersManage); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email %q already registered", apperror.ErrConflict, req.Email)
	}
	if _, err := s.roles.FindByID(ctx, req.RoleID); err != nil {
		return nil, notFound(err, "role")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashed),
		RoleID:       req.RoleID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateUserRequest) (*model.User, error) {
	if err := authz.Authorize(actor, authz.ActionUsersManage); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("%w: email %q already registered", apperror.ErrConflict, *req.Email)
		}
		user.Email = *req.Email
	}
	if req.RoleID != nil {
		if _, err := s.roles.FindByID(ctx, *req.RoleID); err != nil {
			return nil, notFound(err, "role")
		}
		user.RoleID = *req.RoleID
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionUsersManage); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "user")
	}
	return s.repo.Delete(ctx, id)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // Development fallback only
	}
	return []byte(secret)
}
