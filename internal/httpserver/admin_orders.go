package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
	"github.com/avelin/stitchmart/internal/service"
	"github.com/avelin/stitchmart/internal/util"
)

type AdminOrderHandler struct {
	Orders *service.OrderService
}

// ListOrders searches across order id and the owning user's email and name.
func (h *AdminOrderHandler) ListOrders(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	from, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	f := repo.OrderFilter{
		Search: c.QueryParam("search"),
		Status: models.OrderStatus(c.QueryParam("status")),
		Offset: from,
		Limit:  limit,
	}

	total, orders, err := h.Orders.ListOrders(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"meta":   listMeta(total, page, limit),
	})
}

func (h *AdminOrderHandler) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_order_status")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return httpError(err)
	}

	l.Info("order status updated", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
