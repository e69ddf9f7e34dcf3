package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/service"
)

// CurrentUserID reads the identity attached by the auth middleware.
// Returns ErrUnauthorized when the request carries no identity.
func CurrentUserID(c echo.Context) (uint, error) {
	raw, _ := c.Get("user_id").(string)
	if raw == "" {
		return 0, service.ErrUnauthorized
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, service.ErrUnauthorized
	}
	return uint(id), nil
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// httpError maps service sentinels onto transport status codes. Anything
// unrecognized becomes a 500 with a non-leaking message.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrSizeUnavailable),
		errors.Is(err, service.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGateway):
		return echo.NewHTTPError(http.StatusInternalServerError, "payment gateway unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
