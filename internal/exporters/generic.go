package exporters

import "github.com/mrlokans/wp2md/internal/entities"

type RecordExporter interface {
	Export(records []*entities.Record) (ExportResult, error)
}

// WriteTracker remembers what was written by earlier runs so unchanged
// records can be skipped.
type WriteTracker interface {
	RecordHash(path string) (string, bool, error)
	SaveRecord(record *entities.Record, path, contentHash string) error
}

type ExportResult struct {
	RecordsWritten int            `json:"records_written"`
	RecordsSkipped int            `json:"records_skipped"`
	RecordsFailed  int            `json:"records_failed"`
	Files          []ExportedFile `json:"files,omitempty"`
}

// ExportedFile locates the markdown file and image folder of one record.
// Skipped records are listed too, so their images can still be fetched.
type ExportedFile struct {
	Record    *entities.Record `json:"-"`
	Path      string           `json:"path"`
	ImagesDir string           `json:"images_dir"`
	Written   bool             `json:"written"`
}
