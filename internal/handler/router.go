package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spark-tracker/video-ingestion-go/internal/middleware"
)

// NewRouter builds the gin engine with all routes registered. The record
// routes sit behind API key authentication; health and metrics do not.
func NewRouter(
	recordHandler *RecordHandler,
	healthHandler *HealthHandler,
	auth *middleware.APIKeyAuth,
	registry *prometheus.Registry,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler.ReadinessProbe)
	router.GET("/health/live", healthHandler.LivenessProbe)
	router.GET("/health/ready", healthHandler.ReadinessProbe)

	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1", auth.Middleware())
	{
		records := api.Group("/records")
		records.POST("/upload", recordHandler.Upload)
		records.GET("", recordHandler.List)
		records.PATCH("/:id/status", recordHandler.UpdateStatus)
		records.PATCH("/:id/spark-code", recordHandler.UpdateSparkCode)
		records.PUT("/:id", recordHandler.Update)
		records.DELETE("", recordHandler.DeleteAll)
	}

	return router
}
