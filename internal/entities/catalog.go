package entities

import (
	"time"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ConversionRun is one execution of the conversion against an export file.
type ConversionRun struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	ExportPath       string     `gorm:"size:1024" json:"export_path"`
	OutputDir        string     `gorm:"size:1024" json:"output_dir"`
	Status           RunStatus  `gorm:"size:20;index" json:"status"`
	RecordsExtracted int        `json:"records_extracted"`
	RecordsSkipped   int        `json:"records_skipped"`
	RecordsWritten   int        `json:"records_written"`
	EnrichmentFailed int        `json:"enrichment_failed"`
	ImagesFound      int        `json:"images_found"`
	ImagesDownloaded int        `json:"images_downloaded"`
	ImagesFailed     int        `json:"images_failed"`
	Error            string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (ConversionRun) TableName() string {
	return "conversion_runs"
}

// WrittenRecord is the last written state of one markdown file.
type WrittenRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Path        string    `gorm:"uniqueIndex;size:1024" json:"path"`
	RecordType  string    `gorm:"index;size:100" json:"record_type"`
	SourceID    string    `gorm:"index;size:50" json:"source_id"`
	Slug        string    `gorm:"size:512" json:"slug"`
	ContentHash string    `gorm:"size:64" json:"content_hash"`
	RunID       string    `gorm:"index;size:36" json:"run_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DownloadedImage is an image saved next to a record.
type DownloadedImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"uniqueIndex;size:1024" json:"path"`
	URL       string    `gorm:"size:2048" json:"url"`
	RecordID  string    `gorm:"index;size:50" json:"record_id"`
	RunID     string    `gorm:"index;size:36" json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
}
