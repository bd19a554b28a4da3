package http

import (
	"net/http"

	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/services"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Records of the latest conversion
	Store *services.RecordStore

	// Catalog is optional; health reports it as not configured when nil
	Catalog *catalog.Catalog

	// Sync is set when the server re-converts on a schedule
	Sync SyncStatus

	// MetricsHandler serves /metrics when set
	MetricsHandler http.Handler

	// OutputDir is served under /files so rendered pages can show images
	OutputDir string

	Version string
	Logger  logger.Logger
}
