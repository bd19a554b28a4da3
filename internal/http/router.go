package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/services"
)

const filesPrefix = "/files"

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	store := cfg.Store
	if store == nil {
		store = services.NewRecordStore()
	}

	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	health := NewHealthController(cfg.Catalog, store, cfg.Sync, cfg.Version)
	records := NewRecordsController(store, cfg.OutputDir, log)
	runs := NewRunsController(cfg.Catalog, log)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/records", records.List)
		api.GET("/records/:type/:slug", records.Get)
		api.GET("/runs", runs.List)
		api.GET("/runs/:id", runs.Get)
	}

	router.GET("/records/:type/:slug", records.Page)

	if cfg.OutputDir != "" {
		router.Static(filesPrefix, cfg.OutputDir)
	}
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	return router
}
