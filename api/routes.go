package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/evan-burke/nscheck/api/handlers"
	"github.com/evan-burke/nscheck/api/middleware"
	"github.com/evan-burke/nscheck/internal/tracing"
	"github.com/evan-burke/nscheck/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "server error",
			"message": "an unexpected error occurred while checking the domain",
		})
	}))
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Every route is a GET; reject other methods explicitly
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.Header("Allow", http.MethodGet)
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	// setup handlers
	apiHandlers := handlers.InitHandlers(s)

	// Health check endpoint (no custom middleware needed)
	r.GET("/health", handlers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.TracingMiddleware())
	{
		api.GET("/domain", middleware.RateLimitMiddleware(s.Limiter), apiHandlers.DomainCheck.CheckDomain())
		api.GET("/history", apiHandlers.History.Recent())
	}
}
