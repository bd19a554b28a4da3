package importers

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/wxr"
)

// RecordEnricher augments records of one subtype with external data.
// Failures are absorbed per record: EnrichRecords never removes records and
// reports only how many were enriched and how many failed.
type RecordEnricher interface {
	Applies(recordType string) bool
	EnrichRecords(ctx context.Context, records []*entities.Record) (enriched, failed int)
}

// TypeCount is the number of records extracted for one type.
type TypeCount struct {
	Type  string
	Count int
}

// Result is the outcome of a pipeline run.
type Result struct {
	Records []*entities.Record
	// Counts lists extracted records per type, in classification order.
	Counts []TypeCount
	// Skipped counts records dropped because they were malformed.
	Skipped int
	// Errors holds the reason for every skipped record.
	Errors           []error
	AssetsFound      int
	EnrichedRecords  int
	EnrichmentFailed int
}

// Pipeline runs the extraction flow over a parsed export:
// classify → extract (+ enrich) → collect assets → correlate.
type Pipeline struct {
	opts      Options
	extractor *Extractor
	enricher  RecordEnricher
	logger    logger.Logger
}

// NewPipeline creates a pipeline. enricher may be nil.
func NewPipeline(opts Options, translator ContentTranslator, enricher RecordEnricher, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		opts:      opts,
		extractor: NewExtractor(opts, translator),
		enricher:  enricher,
		logger:    log,
	}
}

// Run processes doc and returns the correlated records. Asset collection
// runs alongside extraction; both only read the export.
func (p *Pipeline) Run(ctx context.Context, doc *wxr.Document) (*Result, error) {
	if doc == nil {
		return nil, errors.New("no export document")
	}

	types := ClassifyTypes(doc, p.opts.IncludeOtherTypes)
	p.logger.Info("Classified record types", logger.Strings("types", types))

	result := &Result{}
	var assets []entities.Asset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		assets = p.collectAssets(doc, types)
		return nil
	})
	g.Go(func() error {
		return p.extract(gctx, doc, types, result)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Correlate(result.Records, assets)
	result.AssetsFound = len(assets)

	p.logger.Info("Extraction finished",
		logger.Int("records", len(result.Records)),
		logger.Int("skipped", result.Skipped),
		logger.Int("assets", result.AssetsFound),
	)
	return result, nil
}

func (p *Pipeline) extract(ctx context.Context, doc *wxr.Document, types []string, result *Result) error {
	for _, recordType := range types {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, errs := p.extractor.ExtractType(doc, recordType)
		for _, err := range errs {
			p.logger.Warn("Skipping malformed record", logger.String("type", recordType), logger.Error(err))
		}
		result.Skipped += len(errs)
		result.Errors = append(result.Errors, errs...)

		if p.enricher != nil && p.enricher.Applies(recordType) && len(records) > 0 {
			enriched, failed := p.enricher.EnrichRecords(ctx, records)
			result.EnrichedRecords += enriched
			result.EnrichmentFailed += failed
		}

		result.Records = append(result.Records, records...)
		result.Counts = append(result.Counts, TypeCount{Type: recordType, Count: len(records)})
	}
	return nil
}

func (p *Pipeline) collectAssets(doc *wxr.Document, types []string) []entities.Asset {
	var assets []entities.Asset
	if p.opts.SaveAttachedImages {
		assets = append(assets, CollectAttachedAssets(doc)...)
	}
	if p.opts.SaveScrapedImages {
		assets = append(assets, CollectScrapedAssets(doc, types)...)
	}
	return assets
}
