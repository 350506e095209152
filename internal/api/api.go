package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/api/handlers"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/api/middleware"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/metrics"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	InventoryService *service.InventoryService
	Metrics          *metrics.Metrics
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services != nil && services.Metrics != nil {
		router.Use(middleware.Metrics(services.Metrics))
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
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
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics.Handler()))
	}

	if services.InventoryService != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
		supplierHandler := handlers.NewSupplierHandler(services.InventoryService)

		apiGroup := router.Group("/api/v1")
		{
			apiGroup.GET("/inventory/stock", inventoryHandler.GetStock)
			apiGroup.GET("/forecast/demand", inventoryHandler.PredictDemand)

			ordersGroup := apiGroup.Group("/orders")
			{
				ordersGroup.GET("/suggest", inventoryHandler.SuggestOrders)
				ordersGroup.GET("/history", inventoryHandler.GetDecisionHistory)
			}

			suppliersGroup := apiGroup.Group("/suppliers")
			{
				suppliersGroup.GET("", supplierHandler.ListSuppliers)
				suppliersGroup.GET("/performance", supplierHandler.GetPerformance)
				suppliersGroup.PUT("/scores", supplierHandler.UpdateScores)
			}
		}

		// Paths used by the existing web client.
		router.GET("/predict-demand", inventoryHandler.PredictDemand)
		router.GET("/suggest-orders-smart", inventoryHandler.SuggestOrders)
		router.POST("/update-scores", supplierHandler.UpdateScores)
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
