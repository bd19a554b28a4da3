package exporters

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/translator"
	"github.com/mrlokans/wp2md/internal/utils"
)

// Date folder policies.
const (
	DateFoldersNone      = "none"
	DateFoldersYear      = "year"
	DateFoldersYearMonth = "year-month"
)

const indexFileName = "index.md"

// Options controls where and how record files are written.
type Options struct {
	OutputDir string
	// PostFolders writes <slug>/index.md instead of <slug>.md.
	PostFolders bool
	// PrefixDate prepends yyyy-mm-dd- to file or folder names.
	PrefixDate  bool
	DateFolders string
	// Overwrite replaces existing files. Files whose content did not change
	// since the last run are still skipped when a tracker is set.
	Overwrite         bool
	FrontmatterFields []string
}

type MarkdownExporter struct {
	opts    Options
	tracker WriteTracker
	logger  logger.Logger
}

func NewMarkdownExporter(opts Options, log logger.Logger) *MarkdownExporter {
	if opts.DateFolders == "" {
		opts.DateFolders = DateFoldersNone
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &MarkdownExporter{opts: opts, logger: log}
}

// SetTracker sets the catalog consulted before writing (optional).
func (e *MarkdownExporter) SetTracker(tracker WriteTracker) {
	e.tracker = tracker
}

// RecordDir returns the folder holding the record's file.
func (e *MarkdownExporter) RecordDir(record *entities.Record) string {
	dir := filepath.Join(e.opts.OutputDir, utils.SanitizeFilename(record.Meta.Type, "post"))

	published := record.Meta.PublishedAt
	if !published.IsZero() {
		switch e.opts.DateFolders {
		case DateFoldersYear:
			dir = filepath.Join(dir, published.Format("2006"))
		case DateFoldersYearMonth:
			dir = filepath.Join(dir, published.Format("2006"), published.Format("01"))
		}
	}

	if e.opts.PostFolders {
		dir = filepath.Join(dir, e.baseName(record))
	}
	return dir
}

// RecordPath returns the markdown file path of the record.
func (e *MarkdownExporter) RecordPath(record *entities.Record) string {
	if e.opts.PostFolders {
		return filepath.Join(e.RecordDir(record), indexFileName)
	}
	return filepath.Join(e.RecordDir(record), e.baseName(record)+".md")
}

// ImagesDir returns the folder the record's images are saved to.
func (e *MarkdownExporter) ImagesDir(record *entities.Record) string {
	return filepath.Join(e.RecordDir(record), translator.ImagesDir)
}

func (e *MarkdownExporter) baseName(record *entities.Record) string {
	name := utils.SanitizeFilename(record.Meta.Slug, record.Meta.ID)
	if e.opts.PrefixDate && !record.Meta.PublishedAt.IsZero() {
		name = record.Meta.PublishedAt.Format("2006-01-02") + "-" + name
	}
	return name
}

// Export writes one file per record. A failing record is counted and logged;
// only an unusable output directory aborts the export.
func (e *MarkdownExporter) Export(records []*entities.Record) (ExportResult, error) {
	result := ExportResult{}

	if e.opts.OutputDir == "" {
		return result, errors.New("output directory is not set")
	}
	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	for _, record := range records {
		file, err := e.exportRecord(record)
		if err != nil {
			result.RecordsFailed++
			e.logger.Error("Failed to write record",
				logger.String("record_id", record.Meta.ID),
				logger.String("type", record.Meta.Type),
				logger.Error(err),
			)
			continue
		}
		if file.Written {
			result.RecordsWritten++
		} else {
			result.RecordsSkipped++
		}
		result.Files = append(result.Files, file)
	}

	e.logger.Info("Export completed",
		logger.Int("written", result.RecordsWritten),
		logger.Int("skipped", result.RecordsSkipped),
		logger.Int("failed", result.RecordsFailed),
	)
	return result, nil
}

func (e *MarkdownExporter) exportRecord(record *entities.Record) (ExportedFile, error) {
	outputPath := e.RecordPath(record)
	file := ExportedFile{Record: record, Path: outputPath, ImagesDir: e.ImagesDir(record)}

	markdown, err := GenerateMarkdown(record, e.opts.FrontmatterFields)
	if err != nil {
		return file, err
	}
	hash := contentHash(markdown)

	skip, err := e.shouldSkip(outputPath, hash)
	if err != nil {
		return file, err
	}
	if skip {
		e.logger.Debug("Skipping existing record file", logger.String("path", outputPath))
		return file, nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return file, fmt.Errorf("create record directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(markdown), 0644); err != nil {
		return file, fmt.Errorf("write record file: %w", err)
	}
	file.Written = true

	if e.tracker != nil {
		if err := e.tracker.SaveRecord(record, outputPath, hash); err != nil {
			e.logger.Warn("Failed to catalog record", logger.String("path", outputPath), logger.Error(err))
		}
	}
	return file, nil
}

func (e *MarkdownExporter) shouldSkip(outputPath, hash string) (bool, error) {
	if _, err := os.Stat(outputPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat record file: %w", err)
	}

	if !e.opts.Overwrite {
		return true, nil
	}
	if e.tracker == nil {
		return false, nil
	}
	known, ok, err := e.tracker.RecordHash(outputPath)
	if err != nil {
		return false, fmt.Errorf("look up record hash: %w", err)
	}
	return ok && known == hash, nil
}

func contentHash(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}
