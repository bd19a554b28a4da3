package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/logger"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunsController exposes the conversion history kept in the catalog.
type RunsController struct {
	catalog *catalog.Catalog
	logger  logger.Logger
}

func NewRunsController(cat *catalog.Catalog, log logger.Logger) *RunsController {
	if log == nil {
		log = logger.NewNop()
	}
	return &RunsController{catalog: cat, logger: log}
}

// List handles GET /api/runs[?limit=N], newest first.
func (rc *RunsController) List(c *gin.Context) {
	if !rc.requireCatalog(c) {
		return
	}

	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondBadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := rc.catalog.RecentRuns(limit)
	if err != nil {
		rc.logger.Error("Failed to list runs", logger.Error(err))
		respondInternalError(c)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: runs, Total: len(runs)})
}

// Get handles GET /api/runs/:id.
func (rc *RunsController) Get(c *gin.Context) {
	if !rc.requireCatalog(c) {
		return
	}

	run, err := rc.catalog.GetRun(c.Param("id"))
	if errors.Is(err, catalog.ErrRunNotFound) {
		respondNotFound(c, "run")
		return
	}
	if err != nil {
		rc.logger.Error("Failed to load run", logger.String("run_id", c.Param("id")), logger.Error(err))
		respondInternalError(c)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (rc *RunsController) requireCatalog(c *gin.Context) bool {
	if rc.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "catalog is not configured"})
		return false
	}
	return true
}
