package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/hash"
	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *TokenService
}

type AuthResult struct {
	User  *models.User
	Admin *models.Admin
	Pair  *TokenPair
}

func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	exists, err := s.Repo.UserExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		l.Warn("signup rejected", "status", 409, "reason", "email taken")
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: &pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	pair, err := s.Tokens.IssuePair(ctx, user.ID, user.Email, "user", AudienceUser)
	if err != nil {
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	return &AuthResult{User: &user, Pair: pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if user.PasswordHash == nil || !hash.CheckPassword(*user.PasswordHash, password) {
		l.Warn("login failed", "status", 401, "reason", "bad credentials")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	pair, err := s.Tokens.IssuePair(ctx, user.ID, user.Email, "user", AudienceUser)
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Pair: pair}, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.admin_login")

	admin, err := s.Repo.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(admin.PasswordHash, password) {
		l.Warn("admin login failed", "status", 401, "reason", "bad credentials")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	pair, err := s.Tokens.IssuePair(ctx, admin.ID, admin.Email, string(admin.Role), AudienceAdmin)
	if err != nil {
		return nil, err
	}

	l.Info("admin logged in", "admin_id", admin.ID, "role", admin.Role)
	return &AuthResult{Admin: admin, Pair: pair}, nil
}

// Logout revokes the matching refresh row; cookie clearing is the
// handler's concern.
func (s *AuthService) Logout(ctx context.Context, refreshRaw string, aud Audience) error {
	return s.Tokens.Revoke(ctx, refreshRaw, aud)
}
