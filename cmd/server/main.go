package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stwalsh4118/procur/internal/config"
	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/handlers"
	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/middleware"
	"github.com/stwalsh4118/procur/internal/repository"
	"github.com/stwalsh4118/procur/internal/scheduler"
	"github.com/stwalsh4118/procur/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	connectTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting Procur dashboards API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"data_source": cfg.Source.Kind,
		"fallback":    cfg.Source.Fallback,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	src, closeSource, err := openSource(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to open data source", err, map[string]interface{}{
			"data_source": cfg.Source.Kind,
		})
	}
	defer closeSource()

	dashboardService := services.NewDashboardService(src, log.WithComponent("dashboards"))

	// Snapshots are optional; without MongoDB the report routes answer 503.
	var (
		snapshotService services.SnapshotService
		reportScheduler *scheduler.Scheduler
		mongoClient     *mongo.Client
	)
	if cfg.SnapshotsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		mongoClient, err = repository.ConnectMongo(ctx, cfg.MongoDB.URI)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to snapshot archive", err, map[string]interface{}{
				"database": cfg.MongoDB.DBName,
			})
		}

		snapshotRepo := repository.NewSnapshotRepository(mongoClient.Database(cfg.MongoDB.DBName))
		snapshotService = services.NewSnapshotService(dashboardService, snapshotRepo, log.WithComponent("snapshots"))

		reportScheduler, err = scheduler.NewScheduler(cfg.Reporting.CronSchedule, snapshotService, log)
		if err != nil {
			log.Fatal("Failed to create report scheduler", err, nil)
		}
		reportScheduler.Start()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	var pinger datasource.Pinger
	if p, ok := src.(datasource.Pinger); ok {
		pinger = p
	}

	handlers.RegisterRoutes(router,
		handlers.NewHealthHandler(pinger, cfg.Source.Kind, cfg.Server.Env),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewReportHandler(snapshotService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	if reportScheduler != nil {
		reportScheduler.Stop(shutdownCtx)
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("Failed to disconnect snapshot archive", err, nil)
		}
	}

	log.Info("Server exited", nil)
}
