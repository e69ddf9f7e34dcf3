package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/hash"
	"github.com/avelin/stitchmart/internal/repo"
	"github.com/avelin/stitchmart/internal/tokens"
)

// Audience selects the token namespace: storefront users and admin
// operators have separate refresh-token tables and cookie names.
type Audience string

const (
	AudienceUser  Audience = "user"
	AudienceAdmin Audience = "admin"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type TokenService struct {
	Repo          *repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type Identity struct {
	Subject uint
	Email   string
	Role    string
}

func (s *TokenService) IssueAccessToken(subject uint, email, role string) (string, time.Time, error) {
	exp := time.Now().Add(AccessTTL)
	token, err := tokens.SignAccessToken(strconv.FormatUint(uint64(subject), 10), email, role, exp, s.AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// IssueRefreshToken signs a refresh token and persists its sha256 digest.
// The raw token is returned for cookie delivery only.
func (s *TokenService) IssueRefreshToken(ctx context.Context, subject uint, aud Audience) (string, time.Time, error) {
	exp := time.Now().Add(RefreshTTL)
	token, err := tokens.SignRefreshToken(strconv.FormatUint(uint64(subject), 10), exp, s.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	claims, err := tokens.RefreshClaimsFromToken(token, s.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	digest := hash.Sha256Hex(token)
	switch aud {
	case AudienceAdmin:
		err = s.Repo.SaveAdminRefresh(ctx, digest, claims.ID, subject, exp.Unix())
	default:
		err = s.Repo.SaveUserRefresh(ctx, digest, claims.ID, subject, exp.Unix())
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return token, exp, nil
}

func (s *TokenService) IssuePair(ctx context.Context, subject uint, email, role string, aud Audience) (*TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(subject, email, role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(ctx, subject, aud)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *TokenService) VerifyAccess(raw string) (*tokens.AccessClaims, error) {
	return tokens.AccessClaimsFromToken(raw, s.AccessSecret)
}

// VerifyRefresh checks signature and expiry on the token itself, then
// confirms the digest is stored, unexpired and not revoked.
func (s *TokenService) VerifyRefresh(ctx context.Context, raw string, aud Audience) (*tokens.RefreshClaims, error) {
	claims, err := tokens.RefreshClaimsFromToken(raw, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	digest := hash.Sha256Hex(raw)
	var expiresAt int64
	var revoked bool
	switch aud {
	case AudienceAdmin:
		stored, err := s.Repo.FindAdminRefresh(ctx, digest)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: refresh token not found", ErrUnauthorized)
			}
			return nil, err
		}
		expiresAt, revoked = stored.ExpiresAt, stored.Revoked
	default:
		stored, err := s.Repo.FindUserRefresh(ctx, digest)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: refresh token not found", ErrUnauthorized)
			}
			return nil, err
		}
		expiresAt, revoked = stored.ExpiresAt, stored.Revoked
	}

	if revoked {
		return nil, fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
	}
	if time.Now().Unix() > expiresAt {
		return nil, fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
	}
	return claims, nil
}

// Refresh mints a new access token from a valid refresh token, resolving
// the subject's current email and role from storage. The refresh token
// itself is left in place; concurrent refreshes may both succeed.
func (s *TokenService) Refresh(ctx context.Context, raw string, aud Audience) (string, time.Time, *Identity, error) {
	claims, err := s.VerifyRefresh(ctx, raw, aud)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}
	subject := uint(id64)

	var ident Identity
	switch aud {
	case AudienceAdmin:
		admin, err := s.Repo.GetAdminByID(ctx, subject)
		if err != nil {
			return "", time.Time{}, nil, fmt.Errorf("%w: unknown admin", ErrUnauthorized)
		}
		ident = Identity{Subject: admin.ID, Email: admin.Email, Role: string(admin.Role)}
	default:
		user, err := s.Repo.GetUserByID(ctx, subject)
		if err != nil {
			return "", time.Time{}, nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
		}
		ident = Identity{Subject: user.ID, Email: user.Email, Role: "user"}
	}

	access, exp, err := s.IssueAccessToken(ident.Subject, ident.Email, ident.Role)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return access, exp, &ident, nil
}

// Revoke marks the stored refresh row revoked. Unknown tokens are a no-op.
func (s *TokenService) Revoke(ctx context.Context, raw string, aud Audience) error {
	digest := hash.Sha256Hex(raw)
	if aud == AudienceAdmin {
		return s.Repo.RevokeAdminRefresh(ctx, digest)
	}
	return s.Repo.RevokeUserRefresh(ctx, digest)
}

// CookieNames returns the access and refresh cookie names for an audience.
func (aud Audience) CookieNames() (access, refresh string) {
	if aud == AudienceAdmin {
		return tokens.AdminAccessCookie, tokens.AdminRefreshCookie
	}
	return tokens.UserAccessCookie, tokens.UserRefreshCookie
}
