package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/auth"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/rbac"
	"github.com/shashiranjanraj/kashvi-shop/pkg/validate"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=180"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates an admin account.
func (s *AuthService) Register(ctx context.Context, in Credentials) (*models.User, error) {
	if fields := validate.Struct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	taken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: in.Email, Password: hash, Roles: []string{rbac.RoleAdmin}}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.WithCtx(ctx).Info("auth: user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the password and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, in Credentials) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// CreateAdmin registers an admin, or grants the admin role to an existing
// account with that email.
func (s *AuthService) CreateAdmin(ctx context.Context, in Credentials) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.Register(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	if slices.Contains(user.Roles, rbac.RoleAdmin) {
		return user, nil
	}
	user.Roles = append(user.Roles, rbac.RoleAdmin)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("promote user %d: %w", user.ID, err)
	}
	return user, nil
}
