package routes

import (
	"crypto_stats_backend/controllers"
	"crypto_stats_backend/middleware"
	"crypto_stats_backend/services"
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, queries *services.QueryService) {
	statsController := controllers.NewStatsController(queries)

	rateLimit := middleware.RequestRateLimitMiddleware()

	router.GET("/stats", rateLimit, statsController.GetStats)
	router.GET("/deviation", rateLimit, statsController.GetDeviation)
}
