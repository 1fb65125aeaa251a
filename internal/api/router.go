package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neko-san1432/citizenlink-insights-go/internal/config"
	"github.com/neko-san1432/citizenlink-insights-go/internal/handler"
	"github.com/neko-san1432/citizenlink-insights-go/internal/middleware"
	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
)

// Services are the dependencies the router exposes over HTTP
type Services struct {
	Clustering *service.ClusteringService
	Causality  *service.CausalityService
	Insights   *service.InsightsService
	Scheduler  *scheduler.ClusteringScheduler
}

// SetupRouter builds the HTTP router
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CitizenLink insights API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	clusterHandler := handler.NewClusterHandler(svc.Clustering)
	complaintHandler := handler.NewComplaintHandler(svc.Clustering)
	causalityHandler := handler.NewCausalityHandler(svc.Causality)
	insightsHandler := handler.NewInsightsHandler(svc.Insights)
	schedulerHandler := handler.NewSchedulerHandler(svc.Scheduler)

	staff := middleware.RequireRole(cfg.JWTSecret,
		middleware.RoleComplaintCoordinator, middleware.RoleAdmin, middleware.RoleLGUAdmin)
	coordinators := middleware.RequireRole(cfg.JWTSecret,
		middleware.RoleComplaintCoordinator, middleware.RoleAdmin)
	admins := middleware.RequireRole(cfg.JWTSecret, middleware.RoleAdmin)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)))
	{
		clusters := api.Group("/clusters")
		{
			clusters.GET("", staff, clusterHandler.ListClusters)
			clusters.POST("/detect", coordinators, clusterHandler.DetectClusters)
			clusters.GET("/runs", staff, clusterHandler.ListRuns)
		}

		complaints := api.Group("/complaints", staff)
		{
			complaints.GET("/similar", complaintHandler.FindSimilar)
			complaints.GET("/:id/nearest", complaintHandler.GetNearest)
		}

		causality := api.Group("/causality", staff)
		{
			causality.POST("/verify", causalityHandler.Verify)
			causality.POST("/graph", causalityHandler.Graph)
			causality.GET("/active", causalityHandler.Active)
			causality.GET("/rules", causalityHandler.Rules)
		}

		insights := api.Group("/insights", staff)
		{
			insights.GET("/barangays", insightsHandler.BarangayPrioritization)
		}

		clustering := api.Group("/clustering")
		{
			clustering.GET("/status", staff, schedulerHandler.Status)
			clustering.POST("/trigger", admins, schedulerHandler.Trigger)
		}
	}

	return r
}
