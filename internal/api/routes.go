package api

import (
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pricesniper/backend/internal/api/handlers"
	"github.com/pricesniper/backend/internal/config"
	"github.com/pricesniper/backend/internal/extract"
	"github.com/pricesniper/backend/internal/metrics"
	"github.com/pricesniper/backend/internal/services"
	"github.com/pricesniper/backend/internal/storage"
)

// SetupRouter wires the HTTP surface. All state lives in the services
// and stores; the router is glue.
func SetupRouter(cfg config.Config, store *storage.GormStore, registry *extract.Registry, scheduler *services.Scheduler, trends *services.TrendService) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))
	router.Use(requestMetrics())

	productHandler := handlers.NewProductHandler(store, store, registry, scheduler)
	alertHandler := handlers.NewAlertHandler(store, store)
	analyticsHandler := handlers.NewAnalyticsHandler(trends)
	statusHandler := handlers.NewStatusHandler(scheduler, store)

	api := router.Group("/api")
	{
		products := api.Group("/products")
		{
			products.POST("/track", productHandler.TrackProduct)
			products.GET("", productHandler.ListProducts)
			products.POST("/refresh-all", productHandler.RefreshAll)
			products.GET("/:id", productHandler.GetProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.POST("/:id/refresh", productHandler.RefreshProduct)
			products.GET("/:id/analysis", analyticsHandler.GetAnalysis)
			products.GET("/:id/trend", analyticsHandler.GetTrend)
			products.GET("/:id/savings", analyticsHandler.GetSavings)
		}

		alerts := api.Group("/alerts")
		{
			alerts.POST("", alertHandler.CreateAlert)
			alerts.GET("", alertHandler.ListAlerts)
			alerts.GET("/product/:id", alertHandler.AlertsByProduct)
			alerts.DELETE("/:id", alertHandler.CancelAlert)
		}

		api.GET("/status", statusHandler.GetStatus)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics counts requests by method, route template and status.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
