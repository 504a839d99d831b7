package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/persons/internal/server"
	"github.com/alimgiray/persons/pkg/config"
	"github.com/alimgiray/persons/pkg/database"
	"github.com/alimgiray/persons/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Log.Level)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize router
	router := server.NewRouter(database.DB, server.Options{
		BasePath:       cfg.Server.BasePath,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	// Setup server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logBanner(cfg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func logBanner(cfg *config.Config) {
	base := cfg.Server.BasePath
	logger.Infof("Server starting on %s", cfg.Server.Addr())
	logger.Infof("  GET    %s/persons", base)
	logger.Infof("  GET    %s/persons/{id}", base)
	logger.Infof("  GET    %s/persons/search?firstname=&lastname=&page=0&size=10", base)
	logger.Infof("  GET    %s/persons/flexible", base)
	logger.Infof("  POST   %s/persons", base)
	logger.Infof("  PUT    %s/persons/{id}", base)
	logger.Infof("  DELETE %s/persons/{id}", base)
	logger.Info("  GET    /health")
	if cfg.Metrics.Enabled {
		logger.Info("  GET    /metrics")
	}
}
