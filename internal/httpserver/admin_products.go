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
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
	"github.com/avelin/stitchmart/internal/service"
	"github.com/avelin/stitchmart/internal/util"
)

type AdminProductHandler struct {
	Catalog  *service.CatalogService
	Producer *events.Producer
}

func (h *AdminProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", events.TopicProductEvents, "error", err)
	}
}

func productInputOf(req productRequest) service.ProductInput {
	in := service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
	}
	for _, img := range req.Images {
		in.Images = append(in.Images, models.ProductImage{URL: img.URL, Alt: img.Alt})
	}
	for _, s := range req.Sizes {
		in.Sizes = append(in.Sizes, models.ProductSize{Size: s.Size, Quantity: s.Quantity})
	}
	return in
}

func (h *AdminProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_create_product")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Catalog.CreateProduct(ctx, productInputOf(req))
	if err != nil {
		return httpError(err)
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type": "product_created", "product_id": product.ID, "name": product.Name,
	})
	l.Info("product created", "product_id", product.ID)
	return c.JSON(http.StatusCreated, viewOf(*product))
}

// UpdateProduct replaces the full image and size sets rather than diffing.
func (h *AdminProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_update_product")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Catalog.UpdateProduct(ctx, id, productInputOf(req))
	if err != nil {
		return httpError(err)
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type": "product_updated", "product_id": product.ID,
	})
	l.Info("product updated", "product_id", product.ID)
	return c.JSON(http.StatusOK, viewOf(*product))
}

func (h *AdminProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_delete_product")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		return httpError(err)
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type": "product_deleted", "product_id": id,
	})
	l.Info("product deleted", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) ToggleArchive(c echo.Context) error {
	ctx := c.Request().Context()

	var req toggleArchiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Catalog.ToggleArchive(ctx, req.ProductID)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type": "product_archive_toggled", "product_id": product.ID, "is_archived": product.IsArchived,
	})
	return c.JSON(http.StatusOK, viewOf(*product))
}

func (h *AdminProductHandler) ListProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	from, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	f := repo.ProductFilter{
		Name:            c.QueryParam("name"),
		IncludeArchived: c.QueryParam("includeArchived") == "true",
		Offset:          from,
		Limit:           limit,
	}

	total, products, err := h.Catalog.ListProducts(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products": viewsOf(products),
		"meta":     listMeta(total, page, limit),
	})
}

func (h *AdminProductHandler) ListCategories(c echo.Context) error {
	categories, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, categories)
}
