package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/avelin/stitchmart/internal/middleware/auth"

	"github.com/avelin/stitchmart/internal/config"
	"github.com/avelin/stitchmart/internal/db"
	"github.com/avelin/stitchmart/internal/events"
	"github.com/avelin/stitchmart/internal/httpserver"
	"github.com/avelin/stitchmart/internal/logging"
	"github.com/avelin/stitchmart/internal/middleware/loggingmw"
	"github.com/avelin/stitchmart/internal/payment"
	"github.com/avelin/stitchmart/internal/repo"
	"github.com/avelin/stitchmart/internal/search"
	"github.com/avelin/stitchmart/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.RefreshSecret, "REFRESH_SECRET")
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	prod := events.NewProducer(cfg.KafkaBrokers)

	var productSearch *search.ProductSearch
	if cfg.ESURL != "" {
		esClient, err := search.NewESClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		productSearch = search.NewProductSearch(esClient, cfg.ESIndex)
	} else {
		logger.Warn("ES_URL unset, product search disabled")
	}

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	r := repo.New(gormDB)
	tokenSvc := &service.TokenService{Repo: r, AccessSecret: cfg.JWTSecret, RefreshSecret: cfg.RefreshSecret}
	authSvc := &service.AuthService{Repo: r, Tokens: tokenSvc}
	cartSvc := &service.CartService{Repo: r}
	orderSvc := &service.OrderService{Repo: r, Gateway: gateway}
	catalogSvc := &service.CatalogService{Repo: r}
	if productSearch != nil {
		catalogSvc.Index = productSearch
	}
	uploadSvc := &service.UploadService{Repo: r, BaseURL: cfg.BaseURL}

	secure := cfg.IsProduction()
	userMW := authmw.NewUserMiddleware(tokenSvc, secure)
	adminMW := authmw.NewAdminMiddleware(tokenSvc, secure)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth:          &httpserver.AuthHandler{Auth: authSvc, Producer: prod, Secure: secure},
		Cart:          &httpserver.CartHandler{Cart: cartSvc, Producer: prod},
		Orders:        &httpserver.OrderHandler{Orders: orderSvc, Producer: prod},
		Catalog:       &httpserver.CatalogHandler{Catalog: catalogSvc, Search: productSearch},
		AdminProducts: &httpserver.AdminProductHandler{Catalog: catalogSvc, Producer: prod},
		AdminOrders:   &httpserver.AdminOrderHandler{Orders: orderSvc},
		Uploads:       &httpserver.UploadHandler{Uploads: uploadSvc, Dir: cfg.UploadDir},
		UserMW:        userMW,
		AdminMW:       adminMW,
		UploadDir:     cfg.UploadDir,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
