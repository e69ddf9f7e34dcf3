package auth

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/service"
	"github.com/avelin/stitchmart/internal/tokens"
)

// Middleware resolves the caller's identity from cookies, minting a new
// access token from a valid refresh token when needed. FailOpen lets
// anonymous requests through without identity (storefront); without it
// any resolution failure is a 401 (admin).
type Middleware struct {
	Tokens   *service.TokenService
	Audience service.Audience
	FailOpen bool
	Secure   bool
}

func NewUserMiddleware(ts *service.TokenService, secure bool) *Middleware {
	return &Middleware{Tokens: ts, Audience: service.AudienceUser, FailOpen: true, Secure: secure}
}

func NewAdminMiddleware(ts *service.TokenService, secure bool) *Middleware {
	return &Middleware{Tokens: ts, Audience: service.AudienceAdmin, FailOpen: false, Secure: secure}
}

func (m *Middleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessName, refreshName := m.Audience.CookieNames()

		if cookie, err := c.Cookie(accessName); err == nil && cookie.Value != "" {
			if claims, err := m.Tokens.VerifyAccess(cookie.Value); err == nil {
				setIdentity(c, claims.Subject, claims.Email, claims.Role)
				return next(c)
			}
		}

		refreshCookie, err := c.Cookie(refreshName)
		if err != nil || refreshCookie.Value == "" {
			return m.deny(c, next, "missing auth tokens")
		}

		ctx := c.Request().Context()
		newAccess, exp, ident, err := m.Tokens.Refresh(ctx, refreshCookie.Value, m.Audience)
		if err != nil {
			return m.deny(c, next, "cannot refresh access token")
		}

		c.SetCookie(tokens.CreateCookie(accessName, newAccess, "/", exp, m.Secure))
		setIdentity(c, strconv.FormatUint(uint64(ident.Subject), 10), ident.Email, ident.Role)
		return next(c)
	}
}

func (m *Middleware) deny(c echo.Context, next echo.HandlerFunc, reason string) error {
	if m.FailOpen {
		return next(c)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, reason)
}

// RequireRole gates admin endpoints on the operator roles attached by
// Handle. It must run after Handle.
func RequireRole(roles ...models.AdminRole) echo.MiddlewareFunc {
	allowed := map[string]bool{}
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		}
	}
}

func setIdentity(c echo.Context, subject, email, role string) {
	c.Set("user_id", subject)
	c.Set("email", email)
	c.Set("role", role)
	c.Request().Header.Set("x-user-id", subject)
}

// ClearCookies expires both auth cookies for the audience.
func ClearCookies(c echo.Context, aud service.Audience) {
	accessName, refreshName := aud.CookieNames()
	c.SetCookie(tokens.DeleteCookie(accessName, "/"))
	c.SetCookie(tokens.DeleteCookie(refreshName, "/"))
}
