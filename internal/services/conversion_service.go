package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/config"
	"github.com/mrlokans/wp2md/internal/enrichment"
	"github.com/mrlokans/wp2md/internal/exporters"
	"github.com/mrlokans/wp2md/internal/images"
	"github.com/mrlokans/wp2md/internal/importers"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/metrics"
	"github.com/mrlokans/wp2md/internal/translator"
	"github.com/mrlokans/wp2md/internal/wxr"
)

// ErrRunInProgress is returned when a conversion is requested while another
// one is still running.
var ErrRunInProgress = errors.New("conversion already in progress")

// ConversionReport summarises one conversion run.
type ConversionReport struct {
	RunID            string                 `json:"run_id,omitempty"`
	ExportPath       string                 `json:"export_path"`
	Counts           []importers.TypeCount  `json:"counts"`
	Skipped          int                    `json:"skipped"`
	Errors           []error                `json:"-"`
	AssetsFound      int                    `json:"assets_found"`
	Enriched         int                    `json:"enriched"`
	EnrichmentFailed int                    `json:"enrichment_failed"`
	Export           exporters.ExportResult `json:"export"`
	Images           images.Result          `json:"images"`
	Duration         time.Duration          `json:"duration"`
}

// TotalRecords is the number of records extracted across all types.
func (r *ConversionReport) TotalRecords() int {
	total := 0
	for _, c := range r.Counts {
		total += c.Count
	}
	return total
}

// ConversionService runs the whole conversion: read the export, extract and
// correlate records, write markdown files and download images.
type ConversionService struct {
	cfg      *config.Config
	catalog  RunCatalog
	observer RunObserver
	store    *RecordStore
	logger   logger.Logger

	// one run at a time
	mu sync.Mutex
}

func NewConversionService(cfg *config.Config, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ConversionService{cfg: cfg, logger: log}
}

// SetCatalog records runs, written files and images (optional).
func (s *ConversionService) SetCatalog(c RunCatalog) {
	s.catalog = c
}

// SetObserver reports every finished run (optional).
func (s *ConversionService) SetObserver(o RunObserver) {
	s.observer = o
}

// SetStore publishes the records of every successful run (optional).
func (s *ConversionService) SetStore(store *RecordStore) {
	s.store = store
}

// Convert performs one run. Only failures to read the export or to create
// the output directory are returned as errors; per-record problems are
// counted in the report.
func (s *ConversionService) Convert(ctx context.Context) (*ConversionReport, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	report := &ConversionReport{ExportPath: s.cfg.Input.ExportPath}

	if s.catalog != nil {
		runID, err := s.catalog.StartRun(s.cfg.Input.ExportPath, s.cfg.Output.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to start run: %w", err)
		}
		report.RunID = runID
	}

	err := s.convert(ctx, report)
	report.Duration = time.Since(start)
	s.finish(report, err)
	if err != nil {
		return report, err
	}
	return report, nil
}

func (s *ConversionService) convert(ctx context.Context, report *ConversionReport) error {
	if s.cfg.Input.ExportPath == "" {
		return errors.New("export path is not set")
	}

	s.logger.Info("Reading export", logger.String("path", s.cfg.Input.ExportPath))
	doc, err := wxr.ReadFile(s.cfg.Input.ExportPath)
	if err != nil {
		return err
	}

	opts := s.importerOptions()
	// links to images/ only make sense when the files get fetched
	trans := translator.New(translator.Options{
		RewriteImageSources: opts.SaveScrapedImages && s.cfg.Images.Download,
	})
	pipeline := importers.NewPipeline(opts, trans, s.enricher(doc), s.logger)

	result, err := pipeline.Run(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to extract records: %w", err)
	}
	report.Counts = result.Counts
	report.Skipped = result.Skipped
	report.Errors = result.Errors
	report.AssetsFound = result.AssetsFound
	report.Enriched = result.EnrichedRecords
	report.EnrichmentFailed = result.EnrichmentFailed

	exporter := exporters.NewMarkdownExporter(s.exporterOptions(), s.logger)
	if s.catalog != nil {
		exporter.SetTracker(s.catalog)
	}
	exportResult, err := exporter.Export(result.Records)
	if err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	report.Export = exportResult

	if s.cfg.Images.Download {
		report.Images = s.downloadImages(ctx, exportResult.Files)
	}

	if s.store != nil {
		s.store.Replace(s.snapshots(exportResult.Files))
	}
	return nil
}

func (s *ConversionService) importerOptions() importers.Options {
	return importers.Options{
		IncludeOtherTypes:   s.cfg.Records.IncludeOtherTypes,
		FilterCategories:    s.cfg.Records.FilterCategories,
		CustomDateFormat:    s.cfg.Records.DateFormat,
		IncludeTimeWithDate: s.cfg.Records.IncludeTimeWithDate,
		SaveAttachedImages:  s.cfg.Images.SaveAttached,
		SaveScrapedImages:   s.cfg.Images.SaveScraped,
	}
}

func (s *ConversionService) exporterOptions() exporters.Options {
	return exporters.Options{
		OutputDir:         s.cfg.Output.Dir,
		PostFolders:       s.cfg.Output.PostFolders,
		PrefixDate:        s.cfg.Output.PrefixDate,
		DateFolders:       s.cfg.Output.DateFolders,
		Overwrite:         s.cfg.Output.Overwrite,
		FrontmatterFields: s.cfg.Output.FrontmatterFields,
	}
}

// enricher returns nil when enrichment is off or no site URL is known.
func (s *ConversionService) enricher(doc *wxr.Document) importers.RecordEnricher {
	if !s.cfg.Events.Enabled {
		return nil
	}
	baseURL, err := eventsBaseURL(s.cfg.Events.BaseURL, doc)
	if err != nil {
		s.logger.Warn("Event enrichment disabled", logger.Error(err))
		return nil
	}

	client := enrichment.NewClient(baseURL, s.cfg.Events.Timeout)
	return enrichment.NewEnricher(client, enrichment.Options{
		RecordType:   s.cfg.Events.RecordType,
		RequestDelay: s.cfg.Events.RequestDelay,
		MaxInFlight:  s.cfg.Events.MaxInFlight,
		AddressMode:  enrichment.AddressMode(s.cfg.Events.AddressMode),
	}, s.logger.With(logger.String("component", "enricher")))
}

// eventsBaseURL prefers the configured URL and falls back to the site link
// recorded in the export.
func eventsBaseURL(configured string, doc *wxr.Document) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if link := strings.TrimSpace(doc.Channel.Link); link != "" {
		return link, nil
	}
	return "", enrichment.ErrNotConfigured
}

func (s *ConversionService) downloadImages(ctx context.Context, files []exporters.ExportedFile) images.Result {
	var jobs []images.Job
	for _, file := range files {
		for _, url := range file.Record.Meta.ImageURLs {
			jobs = append(jobs, images.Job{RecordID: file.Record.Meta.ID, URL: url, Dir: file.ImagesDir})
		}
	}
	if len(jobs) == 0 {
		return images.Result{}
	}

	downloader := images.NewDownloader(images.Options{
		RequestDelay: s.cfg.Images.RequestDelay,
		Timeout:      s.cfg.Images.Timeout,
		Workers:      s.cfg.Images.Workers,
	}, s.logger.With(logger.String("component", "images")))
	if s.catalog != nil {
		downloader.SetTracker(s.catalog)
	}
	return downloader.Download(ctx, jobs)
}

func (s *ConversionService) snapshots(files []exporters.ExportedFile) []*RecordSnapshot {
	snapshots := make([]*RecordSnapshot, 0, len(files))
	for _, file := range files {
		record := file.Record
		markdown, err := exporters.GenerateMarkdown(record, s.cfg.Output.FrontmatterFields)
		if err != nil {
			s.logger.Warn("Failed to render record snapshot", logger.String("record_id", record.Meta.ID), logger.Error(err))
			continue
		}
		slug := record.Meta.Slug
		if slug == "" {
			slug = record.Meta.ID
		}
		snapshots = append(snapshots, &RecordSnapshot{
			Record:   record,
			Type:     record.Meta.Type,
			Slug:     slug,
			ID:       record.Meta.ID,
			Title:    record.Frontmatter.Title,
			Date:     record.Frontmatter.Date,
			Path:     file.Path,
			Images:   record.Meta.ImageURLs,
			Markdown: markdown,
		})
	}
	return snapshots
}

func (s *ConversionService) finish(report *ConversionReport, runErr error) {
	if runErr != nil {
		s.logger.Error("Conversion failed", logger.Error(runErr), logger.Duration("duration", report.Duration))
	} else {
		s.logger.Info("Conversion completed",
			logger.Int("records", report.TotalRecords()),
			logger.Int("skipped", report.Skipped),
			logger.Int("images_found", report.AssetsFound),
			logger.Int("images_downloaded", report.Images.Downloaded),
			logger.Duration("duration", report.Duration),
		)
	}

	if s.catalog != nil && report.RunID != "" {
		stats := catalog.RunStats{
			RecordsExtracted: report.TotalRecords(),
			RecordsSkipped:   report.Skipped,
			RecordsWritten:   report.Export.RecordsWritten,
			EnrichmentFailed: report.EnrichmentFailed,
			ImagesFound:      report.AssetsFound,
			ImagesDownloaded: report.Images.Downloaded,
			ImagesFailed:     report.Images.Failed,
		}
		if err := s.catalog.FinishRun(report.RunID, stats, runErr); err != nil {
			s.logger.Warn("Failed to record run", logger.String("run_id", report.RunID), logger.Error(err))
		}
	}

	if s.observer != nil {
		byType := make(map[string]int, len(report.Counts))
		for _, c := range report.Counts {
			byType[c.Type] += c.Count
		}
		s.observer.ObserveRun(metrics.RunStats{
			RecordsByType:    byType,
			RecordsSkipped:   report.Skipped,
			AssetsFound:      report.AssetsFound,
			Enriched:         report.Enriched,
			EnrichmentFailed: report.EnrichmentFailed,
			Written:          report.Export.RecordsWritten,
			WriteSkipped:     report.Export.RecordsSkipped,
			WriteFailed:      report.Export.RecordsFailed,
			ImagesDownloaded: report.Images.Downloaded,
			ImagesSkipped:    report.Images.Skipped,
			ImagesFailed:     report.Images.Failed,
			Duration:         report.Duration,
			Err:              runErr,
		})
	}
}
