package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/events"
	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/service"
)

type CartHandler struct {
	Cart     *service.CartService
	Producer *events.Producer
}

func (h *CartHandler) publish(c echo.Context, userID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", events.TopicCartEvents, "error", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	view, err := h.Cart.GetCart(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	var req cartAddRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.Cart.AddItem(c.Request().Context(), userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, userID, map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": req.ProductID,
		"size":       req.Size,
		"quantity":   req.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	var req cartUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.Cart.UpdateItem(c.Request().Context(), userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, userID, map[string]any{
		"type":       "cart_item_updated",
		"user_id":    userID,
		"product_id": req.ProductID,
		"size":       req.Size,
		"quantity":   req.Quantity,
	})
	if item == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	var req cartRemoveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.Cart.RemoveItem(c.Request().Context(), userID, req.ItemID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, userID, map[string]any{
		"type":     "cart_item_removed",
		"user_id":  userID,
		"item_id":  req.ItemID,
		"quantity": req.Quantity,
	})
	if item == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
	}
	return c.JSON(http.StatusOK, item)
}

// GetQuantity never fails: missing cart or line reads as zero.
func (h *CartHandler) GetQuantity(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return httpError(err)
	}

	productID, err := strconv.ParseUint(c.QueryParam("productId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	size := c.QueryParam("size")

	qty, err := h.Cart.GetQuantity(c.Request().Context(), userID, uint(productID), size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"quantity": qty})
}
