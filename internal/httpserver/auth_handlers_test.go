package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/tokens"
)

func TestSignupSetsCookiesAndCreatesUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "new@example.com", "password": "password123", "name": "New User",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	res := rec.Result()
	require.NotNil(t, cookieByName(res.Cookies(), tokens.UserAccessCookie))
	require.NotNil(t, cookieByName(res.Cookies(), tokens.UserRefreshCookie))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "new@example.com", body["email"])

	var user models.User
	require.NoError(t, s.repo.DB.Where("email = ?", "new@example.com").First(&user).Error)
	require.NotNil(t, user.PasswordHash)
	require.NotEqual(t, "password123", *user.PasswordHash)
}

func TestSignupDuplicateEmailIs409(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]string{"email": "dup@example.com", "password": "password123", "name": "X"}

	rec := s.request(t, http.MethodPost, "/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.request(t, http.MethodPost, "/api/auth/signup", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupRejectsBadPayload(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "not-an-email", "password": "password123", "name": "X",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "ok@example.com", "password": "short", "name": "X",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "login@example.com")

	rec := s.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "login@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "login@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckSessionReflectsIdentity(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "me@example.com")

	rec := s.request(t, http.MethodGet, "/api/check-session", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(t, http.MethodGet, "/api/check-session", nil, s.userCookies(t, user)...)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "me@example.com", body["email"])
}

func TestLogoutRevokesAndClearsCookies(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "bye@example.com")
	cookies := s.userCookies(t, user)

	rec := s.request(t, http.MethodPost, "/api/logout", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		require.Empty(t, c.Value)
	}

	var stored models.RefreshToken
	require.NoError(t, s.repo.DB.First(&stored).Error)
	require.True(t, stored.Revoked)
}

func TestAdminLoginNamespaceIsSeparate(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "boss@example.com", models.AdminRoleGod)

	rec := s.request(t, http.MethodPost, "/api/admin/auth/login", map[string]string{
		"email": "boss@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := rec.Result()
	require.NotNil(t, cookieByName(res.Cookies(), tokens.AdminAccessCookie))
	require.NotNil(t, cookieByName(res.Cookies(), tokens.AdminRefreshCookie))
	require.Nil(t, cookieByName(res.Cookies(), tokens.UserAccessCookie))
}

func TestAdminCheckSessionFailClosed(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin(t, "ops@example.com", models.AdminRoleHelper)

	rec := s.request(t, http.MethodGet, "/api/admin/check-session", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(t, http.MethodGet, "/api/admin/check-session", nil, s.adminCookies(t, admin)...)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, string(models.AdminRoleHelper), body["role"])
}

func TestUserCookiesDoNotOpenAdminSurface(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "sneaky@example.com")

	rec := s.request(t, http.MethodGet, "/api/admin/orders", nil, s.userCookies(t, user)...)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
