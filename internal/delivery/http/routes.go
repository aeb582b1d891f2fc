package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shelfscout/backend/config"
	"github.com/shelfscout/backend/internal/logging"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = logging.Discard()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/products/:asin", handler.GetProduct)
		v1.GET("/identifiers/:barcode", handler.ResolveIdentifier)
		v1.GET("/search", handler.SearchKeywords)
		v1.POST("/batch", handler.RunBatch)
	}

	return router
}
