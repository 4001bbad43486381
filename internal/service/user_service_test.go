package service

import (
	"context"
	"errors"
	"testing"

	"crm-backend/internal/model"
	"crm-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func seedLoginUser(t *testing.T, users *fakeUserRepo, email, password string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, newFakeRoleRepo())
	ctx := context.Background()

	user := seedLoginUser(t, users, "rep@example.com", "s3cret-pass", true)

	res, err := svc.Login(ctx, LoginRequest{Email: "rep@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Type != "bearer" || res.Token == "" {
		t.Fatalf("token response = %+v", res)
	}

	// The subject claim must carry the user id.
	token, _, err := jwt.NewParser().ParseUnverified(res.Token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	sub, _ := token.Claims.GetSubject()
	if sub != user.ID.String() {
		t.Fatalf("sub = %q, want %q", sub, user.ID)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, newFakeRoleRepo())
	seedLoginUser(t, users, "rep@example.com", "s3cret-pass", true)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "rep@example.com", Password: "wrong"})
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeRoleRepo())
	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, newFakeRoleRepo())
	seedLoginUser(t, users, "rep@example.com", "s3cret-pass", false)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "rep@example.com", Password: "s3cret-pass"})
	if !errors.Is(err, apperror.ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount", err)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	svc := NewUserService(users, roles)
	admin := adminActor()
	ctx := context.Background()

	role := &model.Role{Name: "Sales Rep", Permissions: []string{"deals.read"}}
	if err := roles.Create(ctx, role); err != nil {
		t.Fatalf("seed role: %v", err)
	}

	user, err := svc.CreateUser(ctx, admin, CreateUserRequest{
		Email: "new@example.com", FirstName: "Nola", LastName: "Reyes",
		Password: "hunter2hunter2", RoleID: role.ID,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if !user.IsActive {
		t.Fatal("new users start active")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	svc := NewUserService(users, roles)
	admin := adminActor()
	ctx := context.Background()

	role := &model.Role{Name: "Sales Rep"}
	_ = roles.Create(ctx, role)
	seedLoginUser(t, users, "new@example.com", "irrelevant", true)

	_, err := svc.CreateUser(ctx, admin, CreateUserRequest{
		Email: "new@example.com", FirstName: "Nola", LastName: "Reyes",
		Password: "hunter2hunter2", RoleID: role.ID,
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeRoleRepo())
	_, err := svc.CreateUser(context.Background(), adminActor(), CreateUserRequest{
		Email: "new@example.com", FirstName: "Nola", LastName: "Reyes",
		Password: "hunter2hunter2", RoleID: uuid.New(),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUserManagementForbidden(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeRoleRepo())
	_, err := svc.CreateUser(context.Background(), viewerActor(), CreateUserRequest{
		Email: "new@example.com", FirstName: "Nola", LastName: "Reyes",
		Password: "hunter2hunter2", RoleID: uuid.New(),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}
