package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nutrimatch/backend/config"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	}
	{
		foods := v1.Group("/foods")
		{
			foods.GET("/resolve", handler.ResolveFood)
			foods.GET("/:id", handler.GetFood)
			foods.GET("/:id/serving", handler.GetServing)
		}

		portions := v1.Group("/portions")
		{
			portions.GET("/estimate", handler.EstimatePortion)
			portions.GET("/profiles", handler.PortionProfiles)
		}

		nutrition := v1.Group("/nutrition")
		{
			nutrition.POST("/search", handler.SearchNutrition)
			nutrition.GET("/calculate", handler.Calculate)
			nutrition.POST("/aggregate", handler.Aggregate)
			nutrition.POST("/aggregate/daily", handler.AggregateDaily)
			nutrition.GET("/categories", handler.Categories)
			nutrition.GET("/stats", handler.Stats)
			nutrition.GET("/validate", handler.ValidateCommonFoods)
		}

		vision := v1.Group("/vision")
		{
			vision.POST("/suggest", handler.Suggest)
			vision.POST("/parse", handler.ParseVision)
		}

		meals := v1.Group("/meals", RequireUser())
		{
			meals.POST("", handler.CreateMeal)
			meals.GET("", handler.ListMeals)
			meals.GET("/summary", handler.MealSummary)
			meals.GET("/summary/today", handler.TodaySummary)
			meals.GET("/:id", handler.GetMeal)
			meals.DELETE("/:id", handler.DeleteMeal)
		}

		v1.POST("/admin/reload", handler.Reload)
	}

	return router
}
