package server

import (
	"database/sql"

	"github.com/alimgiray/persons/internal/handlers"
	"github.com/alimgiray/persons/internal/metrics"
	"github.com/alimgiray/persons/internal/middleware"
	"github.com/alimgiray/persons/internal/repositories"
	"github.com/alimgiray/persons/internal/services"
	"github.com/gin-gonic/gin"
)

type Options struct {
	BasePath       string
	MetricsEnabled bool
}

// NewRouter wires repository, service and handlers over db and returns the gin engine
func NewRouter(db *sql.DB, opts Options) *gin.Engine {
	// Initialize dependencies
	personService := services.NewPersonService(repositories.NewTransactor(db))

	router := gin.New()

	// Apply middleware
	router.Use(middleware.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	if opts.MetricsEnabled {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	router.Use(middleware.ErrorMapper())

	setupRoutes(router, opts.BasePath, db, personService)
	return router
}

func setupRoutes(router *gin.Engine, basePath string, db *sql.DB, personService *services.PersonService) {
	// Initialize handlers
	personHandler := handlers.NewPersonHandler(personService)
	healthHandler := handlers.NewHealthHandler(db)

	api := router.Group(basePath)
	personHandler.RegisterRoutes(api)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
