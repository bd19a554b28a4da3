package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/services"
)

// SyncStatus is the view of the sync scheduler the health check needs.
// It is implemented by *scheduler.SyncScheduler.
type SyncStatus interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
	LastError() error
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`

	Records int           `json:"records"`
	Catalog *CatalogStats `json:"catalog,omitempty"`
	LastRun *RunSummary   `json:"last_run,omitempty"`
	NextRun string        `json:"next_sync,omitempty"`
}

// CatalogStats counts what all runs have written so far.
type CatalogStats struct {
	RecordFiles int64 `json:"record_files"`
	Images      int64 `json:"images"`
}

// RunSummary is the short form of a conversion run.
type RunSummary struct {
	ID        string             `json:"id"`
	Status    entities.RunStatus `json:"status"`
	StartedAt string             `json:"started_at"`
	Records   int                `json:"records"`
	Written   int                `json:"written"`
	Images    int                `json:"images_downloaded"`
	Error     string             `json:"error,omitempty"`
}

func summarizeRun(run *entities.ConversionRun) *RunSummary {
	return &RunSummary{
		ID:        run.ID,
		Status:    run.Status,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
		Records:   run.RecordsExtracted,
		Written:   run.RecordsWritten,
		Images:    run.ImagesDownloaded,
		Error:     run.Error,
	}
}

// HealthController reports whether the catalog answers, how many records the
// preview holds, the latest run and, when syncing, the scheduler state.
type HealthController struct {
	catalog *catalog.Catalog
	store   *services.RecordStore
	sync    SyncStatus
	version string
}

func NewHealthController(cat *catalog.Catalog, store *services.RecordStore, sync SyncStatus, version string) *HealthController {
	return &HealthController{
		catalog: cat,
		store:   store,
		sync:    sync,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string),
	}

	for _, check := range []func(*HealthResponse) bool{h.checkCatalog, h.checkRecords, h.checkSync} {
		if !check(&resp) {
			resp.Status = "unhealthy"
		}
	}

	statusCode := http.StatusOK
	if resp.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, resp)
}

func (h *HealthController) checkCatalog(resp *HealthResponse) bool {
	if h.catalog == nil {
		resp.Checks["catalog"] = "not configured"
		return true
	}

	sqlDB, err := h.catalog.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		resp.Checks["catalog"] = "error: " + err.Error()
		return false
	}
	resp.Checks["catalog"] = "ok"

	files, err := h.catalog.CountRecords()
	if err != nil {
		resp.Checks["catalog"] = "error: " + err.Error()
		return false
	}
	images, err := h.catalog.CountImages()
	if err != nil {
		resp.Checks["catalog"] = "error: " + err.Error()
		return false
	}
	resp.Catalog = &CatalogStats{RecordFiles: files, Images: images}

	// a failed conversion is reported, the service itself stays up
	if runs, err := h.catalog.RecentRuns(1); err == nil && len(runs) > 0 {
		resp.LastRun = summarizeRun(&runs[0])
	}
	return true
}

func (h *HealthController) checkRecords(resp *HealthResponse) bool {
	if h.store == nil || h.store.UpdatedAt().IsZero() {
		resp.Checks["records"] = "not loaded"
		return true
	}
	resp.Records = h.store.Len()
	resp.Checks["records"] = strconv.Itoa(resp.Records) + " loaded"
	return true
}

func (h *HealthController) checkSync(resp *HealthResponse) bool {
	if h.sync == nil {
		return true
	}
	if !h.sync.IsRunning() {
		resp.Checks["sync"] = "stopped"
		return false
	}

	resp.Checks["sync"] = "scheduled"
	if err := h.sync.LastError(); err != nil {
		resp.Checks["sync"] = "last run failed: " + err.Error()
	}
	if next := h.sync.GetNextRunTime(); next != nil {
		resp.NextRun = next.UTC().Format(time.RFC3339)
	}
	return true
}
