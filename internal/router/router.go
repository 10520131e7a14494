package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"baucheck/internal/handler"
	"baucheck/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	projectH *handler.ProjectHandler,
	planH *handler.PlanHandler,
	reviewH *handler.ReviewHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Project routes
	projects := v1.Group("/projects")
	projects.POST("", projectH.Upload)
	projects.GET("", projectH.List)
	projects.GET("/:id", projectH.Get)
	projects.POST("/:id/retry", projectH.Retry)
	projects.DELETE("/:id", projectH.Delete)
	projects.POST("/:id/completeness", projectH.CheckCompleteness)
	projects.GET("/:id/completeness", projectH.GetCompleteness)
	projects.GET("/:id/reviews", reviewH.ListByProject)

	// Zoning plan routes
	plans := v1.Group("/plans")
	plans.POST("", planH.Upload)
	plans.GET("", planH.List)
	plans.GET("/:id", planH.Get)

	// Review routes
	reviews := v1.Group("/reviews")
	reviews.POST("", reviewH.Create)
	reviews.GET("/:id", reviewH.Get)
	reviews.GET("/:id/export", reviewH.ExportXLSX)

	return r
}
