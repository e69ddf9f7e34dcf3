package httpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/events"
	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/service"
)

type OrderHandler struct {
	Orders   *service.OrderService
	Producer *events.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", events.TopicOrderEvents, "error", err)
	}
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place_order")

	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Orders.PlaceOrder(ctx, userID, req.UserID)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, fmt.Sprint(res.Order.ID), map[string]any{
		"type":     "order_placed",
		"order_id": res.Order.ID,
		"user_id":  userID,
		"total":    res.Order.Total,
	})

	l.Info("order placed", "order_id", res.Order.ID, "total", res.Order.Total)
	return c.JSON(http.StatusCreated, res)
}

// Webhook consumes raw gateway deliveries. The body must stay unparsed
// until the signature check inside the service.
func (h *OrderHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_webhook")

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}
	sig := c.Request().Header.Get("Stripe-Signature")

	if err := h.Orders.HandleWebhook(ctx, payload, sig); err != nil {
		l.Warn("webhook rejected", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	orders, err := h.Orders.ListUserOrders(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetMyOrder(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}
	orderID, err := pathID(c)
	if err != nil {
		return err
	}

	order, err := h.Orders.GetUserOrder(c.Request().Context(), orderID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}
