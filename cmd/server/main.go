package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/neko-san1432/citizenlink-insights-go/internal/api"
	"github.com/neko-san1432/citizenlink-insights-go/internal/config"
	"github.com/neko-san1432/citizenlink-insights-go/internal/database"
	"github.com/neko-san1432/citizenlink-insights-go/internal/report"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.Load()

	if err := report.SetupSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		log.Printf("Warning: Sentry disabled: %v", err)
	}
	report.ConfigureScope(cfg.Environment, cfg.Version)
	defer report.FlushSentry()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.NewMigrationManager(db).RunMigrations(context.Background()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	complaints := repository.NewComplaintRepository(db)
	clusters := repository.NewClusterRepository(db)
	runs := repository.NewClusteringRunRepository(db)
	boundaries := repository.NewBoundaryRepository(cfg.BoundariesPath)

	clusteringService := service.NewClusteringService(complaints, clusters, runs)
	causalityService := service.NewCausalityService(clusters)
	insightsService := service.NewInsightsService(complaints, boundaries, cfg.Prioritization)

	clusteringScheduler := scheduler.NewClusteringScheduler(cfg.Scheduler, clusteringService, clusters, complaints)
	clusteringScheduler.Start()
	defer clusteringScheduler.Stop()

	router := api.SetupRouter(cfg, api.Services{
		Clustering: clusteringService,
		Causality:  causalityService,
		Insights:   insightsService,
		Scheduler:  clusteringScheduler,
	})

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
