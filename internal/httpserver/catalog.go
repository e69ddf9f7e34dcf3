package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
	"github.com/avelin/stitchmart/internal/search"
	"github.com/avelin/stitchmart/internal/service"
	"github.com/avelin/stitchmart/internal/util"
)

type CatalogHandler struct {
	Catalog *service.CatalogService
	Search  *search.ProductSearch
}

type productView struct {
	models.Product
	StockStatus string `json:"stock_status"`
}

func viewOf(p models.Product) productView {
	return productView{Product: p, StockStatus: service.StockStatus(&p)}
}

func viewsOf(products []models.Product) []productView {
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = viewOf(p)
	}
	return views
}

func listMeta(total int64, page, size int) echo.Map {
	return echo.Map{"total": total, "page": page, "page_size": size}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	from, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	f := repo.ProductFilter{
		Name:        c.QueryParam("name"),
		StockStatus: c.QueryParam("stockStatus"),
		Offset:      from,
		Limit:       limit,
	}
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid categoryId")
		}
		f.CategoryID = uint(id)
	}
	if v := c.QueryParam("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid minPrice")
		}
		f.MinPrice = &p
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid maxPrice")
		}
		f.MaxPrice = &p
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

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, viewOf(*product))
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// SearchProducts queries the search index, not the database. It degrades
// to 503 when the deployment runs without one.
func (h *CatalogHandler) SearchProducts(c echo.Context) error {
	if h.Search == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing q")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	from, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, products, err := h.Search.Search(c.Request().Context(), query, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products": viewsOf(products),
		"meta":     listMeta(total, page, limit),
	})
}
