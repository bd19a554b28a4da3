// Package catalog keeps a sqlite record of conversion runs, written record
// files and downloaded images.
//
// The markdown exporter consults it to skip files whose content did not
// change, and the image downloader records what it fetched:
//
//	cat, err := catalog.Open("./wp2md.db")
//	runID, err := cat.StartRun(exportPath, outputDir)
//	exporter.SetTracker(cat)
//	downloader.SetTracker(cat)
//	err = cat.FinishRun(runID, stats, nil)
package catalog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/wp2md/internal/entities"
)

// ErrRunNotFound is returned by GetRun for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// RunStats are the counters stored when a run finishes.
type RunStats struct {
	RecordsExtracted int
	RecordsSkipped   int
	RecordsWritten   int
	EnrichmentFailed int
	ImagesFound      int
	ImagesDownloaded int
	ImagesFailed     int
}

type Catalog struct {
	DB *gorm.DB

	// sqlite allows one writer; image workers save concurrently
	mu    sync.Mutex
	runID string
}

func Open(dbPath string) (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	err = db.AutoMigrate(
		&entities.ConversionRun{},
		&entities.WrittenRecord{},
		&entities.DownloadedImage{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}

	return &Catalog{DB: db}, nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartRun creates a running conversion run and makes it the current run.
func (c *Catalog) StartRun(exportPath, outputDir string) (string, error) {
	run := &entities.ConversionRun{
		ID:         uuid.NewString(),
		ExportPath: exportPath,
		OutputDir:  outputDir,
		Status:     entities.RunStatusRunning,
		StartedAt:  time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.DB.Create(run).Error; err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	c.runID = run.ID
	return run.ID, nil
}

// FinishRun stores the run counters. A non-nil runErr marks the run failed.
func (c *Catalog) FinishRun(runID string, stats RunStats, runErr error) error {
	now := time.Now()
	updates := map[string]any{
		"status":            entities.RunStatusCompleted,
		"records_extracted": stats.RecordsExtracted,
		"records_skipped":   stats.RecordsSkipped,
		"records_written":   stats.RecordsWritten,
		"enrichment_failed": stats.EnrichmentFailed,
		"images_found":      stats.ImagesFound,
		"images_downloaded": stats.ImagesDownloaded,
		"images_failed":     stats.ImagesFailed,
		"completed_at":      &now,
	}
	if runErr != nil {
		updates["status"] = entities.RunStatusFailed
		updates["error"] = runErr.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.DB.Model(&entities.ConversionRun{}).Where("id = ?", runID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("finish run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	if c.runID == runID {
		c.runID = ""
	}
	return nil
}

func (c *Catalog) GetRun(runID string) (*entities.ConversionRun, error) {
	var run entities.ConversionRun
	err := c.DB.Where("id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (c *Catalog) RecentRuns(limit int) ([]entities.ConversionRun, error) {
	var runs []entities.ConversionRun
	err := c.DB.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// RecordHash returns the content hash last written to path.
func (c *Catalog) RecordHash(path string) (string, bool, error) {
	var written entities.WrittenRecord
	err := c.DB.Where("path = ?", path).First(&written).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return written.ContentHash, true, nil
}

// SaveRecord upserts the written state of path.
func (c *Catalog) SaveRecord(record *entities.Record, path, contentHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	written := &entities.WrittenRecord{
		Path:        path,
		RecordType:  record.Meta.Type,
		SourceID:    record.Meta.ID,
		Slug:        record.Meta.Slug,
		ContentHash: contentHash,
		RunID:       c.runID,
	}
	return c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"record_type", "source_id", "slug", "content_hash", "run_id", "updated_at"}),
	}).Create(written).Error
}

// SaveImage upserts a downloaded image.
func (c *Catalog) SaveImage(recordID, url, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	image := &entities.DownloadedImage{
		Path:     path,
		URL:      url,
		RecordID: recordID,
		RunID:    c.runID,
	}
	return c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "record_id", "run_id"}),
	}).Create(image).Error
}

func (c *Catalog) CountImages() (int64, error) {
	var count int64
	err := c.DB.Model(&entities.DownloadedImage{}).Count(&count).Error
	return count, err
}

func (c *Catalog) CountRecords() (int64, error) {
	var count int64
	err := c.DB.Model(&entities.WrittenRecord{}).Count(&count).Error
	return count, err
}
