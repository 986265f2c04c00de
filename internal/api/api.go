// backend-go/internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/api/handlers"
	"github.com/optiqo/lenshop/backend-go/internal/api/middleware"
	"github.com/optiqo/lenshop/backend-go/internal/service"
)

type Services struct {
	ProductService  *service.ProductService
	PurchaseService *service.PurchaseService
	AlertService    *service.AlertService
	GridService     *service.GridService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ProductService != nil {
			productHandler := handlers.NewProductHandler(services.ProductService, services.PurchaseService)
			productGroup := apiGroup.Group("/products")
			{
				productGroup.GET("", productHandler.ListProducts)
				productGroup.GET("/:id", productHandler.GetProduct)
				productGroup.PUT("/:id/power_range", productHandler.UpdatePowerRange)
				productGroup.GET("/:id/stock", productHandler.GetStock)
			}

			if services.AlertService != nil {
				alertHandler := handlers.NewAlertHandler(services.AlertService)
				productGroup.GET("/:id/alert_config", alertHandler.GetConfig)
				productGroup.PUT("/:id/alert_config", alertHandler.SaveConfig)
				productGroup.DELETE("/:id/alert_config", alertHandler.DeleteConfig)

				alertGroup := apiGroup.Group("/alerts")
				{
					alertGroup.GET("", alertHandler.ListAlerts)
					alertGroup.POST("/:productId/purchased", alertHandler.MarkPurchased)
				}
			}
		}

		if services.PurchaseService != nil {
			purchaseHandler := handlers.NewPurchaseHandler(services.PurchaseService)
			orderGroup := apiGroup.Group("/purchase_orders")
			{
				orderGroup.GET("", purchaseHandler.ListOrders)
				orderGroup.POST("", purchaseHandler.CreateOrder)
				orderGroup.GET("/:id", purchaseHandler.GetOrder)
				orderGroup.PUT("/:id/rows", purchaseHandler.EditRows)
				orderGroup.POST("/:id/cancel", purchaseHandler.Cancel)
				orderGroup.POST("/:id/stock_in", purchaseHandler.StockIn)
			}
		}

		if services.GridService != nil {
			gridHandler := handlers.NewGridHandler(services.GridService)
			gridGroup := apiGroup.Group("/grid_sessions")
			{
				gridGroup.POST("", gridHandler.StartSession)
				gridGroup.GET("/:id", gridHandler.GetSession)
				gridGroup.POST("/:id/events", gridHandler.ApplyEvent)
				gridGroup.POST("/:id/commit", gridHandler.CommitSession)
				gridGroup.DELETE("/:id", gridHandler.DiscardSession)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
