package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelin/stitchmart/internal/hash"
	"github.com/avelin/stitchmart/internal/models"
)

func newTokenService(t *testing.T) *TokenService {
	t.Helper()
	return &TokenService{
		Repo:          newTestRepo(t),
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}
}

func TestIssuePairStoresDigestOnly(t *testing.T) {
	ts := newTokenService(t)
	user := seedUser(t, ts.Repo, "a@example.com")

	pair, err := ts.IssuePair(context.Background(), user.ID, user.Email, "user", AudienceUser)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	var stored models.RefreshToken
	require.NoError(t, ts.Repo.DB.First(&stored).Error)
	require.Equal(t, hash.Sha256Hex(pair.RefreshToken), stored.TokenHash)
	require.NotEqual(t, pair.RefreshToken, stored.TokenHash)
	require.Equal(t, user.ID, stored.UserID)
	require.False(t, stored.Revoked)
}

func TestVerifyAccessRoundTrip(t *testing.T) {
	ts := newTokenService(t)

	access, _, err := ts.IssueAccessToken(42, "a@example.com", "user")
	require.NoError(t, err)

	claims, err := ts.VerifyAccess(access)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "user", claims.Role)
}

func TestVerifyAccessRejectsWrongSecret(t *testing.T) {
	ts := newTokenService(t)
	other := &TokenService{AccessSecret: []byte("different")}

	access, _, err := ts.IssueAccessToken(1, "a@example.com", "user")
	require.NoError(t, err)

	_, err = other.VerifyAccess(access)
	require.Error(t, err)
}

func TestRefreshMintsAccessFromStoredIdentity(t *testing.T) {
	ts := newTokenService(t)
	user := seedUser(t, ts.Repo, "fresh@example.com")

	refresh, _, err := ts.IssueRefreshToken(context.Background(), user.ID, AudienceUser)
	require.NoError(t, err)

	access, _, ident, err := ts.Refresh(context.Background(), refresh, AudienceUser)
	require.NoError(t, err)
	require.Equal(t, user.ID, ident.Subject)
	require.Equal(t, user.Email, ident.Email)
	require.Equal(t, "user", ident.Role)

	claims, err := ts.VerifyAccess(access)
	require.NoError(t, err)
	require.Equal(t, user.Email, claims.Email)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	ts := newTokenService(t)
	user := seedUser(t, ts.Repo, "gone@example.com")

	refresh, _, err := ts.IssueRefreshToken(context.Background(), user.ID, AudienceUser)
	require.NoError(t, err)
	require.NoError(t, ts.Revoke(context.Background(), refresh, AudienceUser))

	_, _, _, err = ts.Refresh(context.Background(), refresh, AudienceUser)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	ts := newTokenService(t)

	_, _, _, err := ts.Refresh(context.Background(), "not-a-token", AudienceUser)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAudienceNamespacesAreSeparate(t *testing.T) {
	ts := newTokenService(t)
	admin := seedAdmin(t, ts.Repo, "boss@example.com", models.AdminRoleGod)

	refresh, _, err := ts.IssueRefreshToken(context.Background(), admin.ID, AudienceAdmin)
	require.NoError(t, err)

	// Admin token is only valid in the admin namespace.
	_, err = ts.VerifyRefresh(context.Background(), refresh, AudienceUser)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = ts.VerifyRefresh(context.Background(), refresh, AudienceAdmin)
	require.NoError(t, err)

	var count int64
	require.NoError(t, ts.Repo.DB.Model(&models.AdminRefreshToken{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, ts.Repo.DB.Model(&models.RefreshToken{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestAdminRefreshResolvesRole(t *testing.T) {
	ts := newTokenService(t)
	admin := seedAdmin(t, ts.Repo, "mgr@example.com", models.AdminRoleManager)

	refresh, _, err := ts.IssueRefreshToken(context.Background(), admin.ID, AudienceAdmin)
	require.NoError(t, err)

	_, _, ident, err := ts.Refresh(context.Background(), refresh, AudienceAdmin)
	require.NoError(t, err)
	require.Equal(t, string(models.AdminRoleManager), ident.Role)
}
