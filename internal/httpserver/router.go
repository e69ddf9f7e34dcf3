package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/avelin/stitchmart/internal/middleware/auth"

	"github.com/avelin/stitchmart/internal/models"
)

type Deps struct {
	Auth          *AuthHandler
	Cart          *CartHandler
	Orders        *OrderHandler
	Catalog       *CatalogHandler
	AdminProducts *AdminProductHandler
	AdminOrders   *AdminOrderHandler
	Uploads       *UploadHandler
	UserMW        *authmw.Middleware
	AdminMW       *authmw.Middleware
	UploadDir     string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Static("/uploads", d.UploadDir)

	api := e.Group("/api")

	api.POST("/auth/signup", d.Auth.Signup)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/logout", d.Auth.Logout)
	api.GET("/check-session", d.Auth.CheckSession, d.UserMW.Handle)

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	api.GET("/product/categories", d.Catalog.ListCategories)

	cart := api.Group("/cart", d.UserMW.Handle)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/add", d.Cart.AddItem)
	cart.POST("/update", d.Cart.UpdateItem)
	cart.POST("/remove", d.Cart.RemoveItem)
	cart.GET("/quantity", d.Cart.GetQuantity)

	order := api.Group("/order")
	order.POST("/webhook", d.Orders.Webhook)
	order.POST("/place-order", d.Orders.PlaceOrder, d.UserMW.Handle)

	account := api.Group("/account", d.UserMW.Handle)
	account.GET("/orders", d.Orders.ListMyOrders)
	account.GET("/orders/:id", d.Orders.GetMyOrder)

	api.POST("/admin/auth/login", d.Auth.AdminLogin)

	admin := api.Group("/admin", d.AdminMW.Handle)
	admin.GET("/check-session", d.Auth.AdminCheckSession)
	admin.POST("/logout", d.Auth.AdminLogout)

	admin.GET("/products", d.AdminProducts.ListProducts)
	admin.GET("/categories", d.AdminProducts.ListCategories)
	admin.GET("/orders", d.AdminOrders.ListOrders)
	admin.GET("/orders/:id", d.AdminOrders.GetOrder)
	admin.GET("/uploads", d.Uploads.ListUploads)

	// HELPER is read-only; writes need MANAGER or GOD.
	writer := authmw.RequireRole(models.AdminRoleGod, models.AdminRoleManager)
	admin.POST("/products", d.AdminProducts.CreateProduct, writer)
	admin.PUT("/products/:id", d.AdminProducts.UpdateProduct, writer)
	admin.DELETE("/products/:id", d.AdminProducts.DeleteProduct, writer)
	admin.POST("/product/toggle-archive", d.AdminProducts.ToggleArchive, writer)
	admin.PATCH("/orders/:id/status", d.AdminOrders.UpdateStatus, writer)
	admin.POST("/upload", d.Uploads.Upload, writer)
}
