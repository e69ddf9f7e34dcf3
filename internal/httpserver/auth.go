package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/avelin/stitchmart/internal/middleware/auth"

	"github.com/avelin/stitchmart/internal/events"
	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/service"
	"github.com/avelin/stitchmart/internal/tokens"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Producer *events.Producer
	Secure   bool
}

func (h *AuthHandler) setPairCookies(c echo.Context, pair *service.TokenPair, aud service.Audience) {
	accessName, refreshName := aud.CookieNames()
	c.SetCookie(tokens.CreateCookie(accessName, pair.AccessToken, "/", pair.AccessExp, h.Secure))
	c.SetCookie(tokens.CreateCookie(refreshName, pair.RefreshToken, "/", pair.RefreshExp, h.Secure))
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", topic, "error", err)
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Auth.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return httpError(err)
	}
	h.setPairCookies(c, res.Pair, service.AudienceUser)

	h.publish(c, events.TopicUserEvents, fmt.Sprint(res.User.ID), map[string]any{
		"type":    "user_registered",
		"user_id": res.User.ID,
		"email":   res.User.Email,
	})

	l.Info("signup ok", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"id": res.User.ID, "email": res.User.Email, "name": res.User.Name,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	h.setPairCookies(c, res.Pair, service.AudienceUser)

	h.publish(c, events.TopicUserEvents, fmt.Sprint(res.User.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": res.User.ID,
	})

	l.Info("login ok", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"id": res.User.ID, "email": res.User.Email, "name": res.User.Name,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	_, refreshName := service.AudienceUser.CookieNames()
	if cookie, err := c.Cookie(refreshName); err == nil && cookie.Value != "" {
		if err := h.Auth.Logout(ctx, cookie.Value, service.AudienceUser); err != nil {
			l.Warn("revoke failed", "error", err)
		}
	}
	authmw.ClearCookies(c, service.AudienceUser)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// CheckSession reports the identity resolved by the fail-open middleware.
func (h *AuthHandler) CheckSession(c echo.Context) error {
	id, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "email": email, "role": role})
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Auth.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	h.setPairCookies(c, res.Pair, service.AudienceAdmin)

	l.Info("admin login ok", "admin_id", res.Admin.ID, "role", res.Admin.Role)
	return c.JSON(http.StatusOK, echo.Map{
		"id": res.Admin.ID, "email": res.Admin.Email, "role": res.Admin.Role,
	})
}

func (h *AuthHandler) AdminCheckSession(c echo.Context) error {
	id, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "email": email, "role": role})
}

func (h *AuthHandler) AdminLogout(c echo.Context) error {
	ctx := c.Request().Context()

	_, refreshName := service.AudienceAdmin.CookieNames()
	if cookie, err := c.Cookie(refreshName); err == nil && cookie.Value != "" {
		if err := h.Auth.Logout(ctx, cookie.Value, service.AudienceAdmin); err != nil {
			logging.FromContext(ctx).Warn("admin revoke failed", "error", err)
		}
	}
	authmw.ClearCookies(c, service.AudienceAdmin)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
