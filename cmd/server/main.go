// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/api"
	"github.com/optiqo/lenshop/backend-go/internal/cache"
	"github.com/optiqo/lenshop/backend-go/internal/config"
	"github.com/optiqo/lenshop/backend-go/internal/repository/postgres"
	"github.com/optiqo/lenshop/backend-go/internal/service"
	"github.com/optiqo/lenshop/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	alertRepo := postgres.NewAlertConfigRepository(db)

	// Initialize caches. Each falls back to an in-process implementation
	// when Redis is disabled or unreachable.
	purchased, err := cache.NewPurchasedSet(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, using in-memory purchased set")
		purchased = cache.NewMemoryPurchasedSet()
	}
	alertCache, err := cache.NewAlertCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, alert snapshots disabled")
		alertCache = cache.NewNoopAlertCache()
	}
	mirror, err := cache.NewRangeMirror(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, power range mirror disabled")
		mirror = cache.NewNoopRangeMirror()
	}

	// Initialize services
	productService := service.NewProductService(productRepo, mirror)
	purchaseService := service.NewPurchaseService(orderRepo, productRepo, alertCache)
	alertService := service.NewAlertService(productRepo, orderRepo, alertRepo, purchased, alertCache)
	gridService := service.NewGridService(productService, alertService, purchaseService)

	router := api.NewRouter(&api.Services{
		ProductService:  productService,
		PurchaseService: purchaseService,
		AlertService:    alertService,
		GridService:     gridService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
