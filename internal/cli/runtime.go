package cli

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/config"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/metrics"
	"github.com/mrlokans/wp2md/internal/services"
)

// conversionFlags binds the flags shared by every command that converts an
// export. Flag defaults come from cfg, so only flags given on the command
// line override the configuration.
type conversionFlags struct {
	filterCategories  string
	frontmatterFields string
	noCatalog         bool
	noImages          bool
	verbose           bool
}

func (f *conversionFlags) bind(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Input.ExportPath, "export", cfg.Input.ExportPath, "Path to the WordPress export (WXR) file (required)")
	fs.StringVar(&cfg.Output.Dir, "output", cfg.Output.Dir, "Output directory for markdown files")
	fs.BoolVar(&cfg.Output.PostFolders, "post-folders", cfg.Output.PostFolders, "Write each record to <slug>/index.md")
	fs.BoolVar(&cfg.Output.PrefixDate, "prefix-date", cfg.Output.PrefixDate, "Prefix file and folder names with the publish date")
	fs.StringVar(&cfg.Output.DateFolders, "date-folders", cfg.Output.DateFolders, "Group records in date folders: none, year or year-month")
	fs.BoolVar(&cfg.Output.Overwrite, "overwrite", cfg.Output.Overwrite, "Overwrite existing record files")
	fs.StringVar(&f.frontmatterFields, "frontmatter", "", "Comma separated frontmatter fields, in order")

	fs.BoolVar(&cfg.Records.IncludeOtherTypes, "other-types", cfg.Records.IncludeOtherTypes, "Also convert pages and custom post types")
	fs.StringVar(&f.filterCategories, "filter-categories", "", "Comma separated categories to drop from every record")
	fs.StringVar(&cfg.Records.DateFormat, "date-format", cfg.Records.DateFormat, "Go time layout for the date field, e.g. 2006-01-02 (Luxon tokens are not supported)")
	fs.BoolVar(&cfg.Records.IncludeTimeWithDate, "include-time", cfg.Records.IncludeTimeWithDate, "Write full timestamps as RFC 3339 without milliseconds")

	fs.BoolVar(&cfg.Images.SaveAttached, "attached-images", cfg.Images.SaveAttached, "Save images attached to records")
	fs.BoolVar(&cfg.Images.SaveScraped, "scraped-images", cfg.Images.SaveScraped, "Save images referenced in record bodies")
	fs.BoolVar(&f.noImages, "no-download", false, "Do not download images")

	fs.BoolVar(&cfg.Events.Enabled, "events", cfg.Events.Enabled, "Enrich event records from the site's events API")
	fs.StringVar(&cfg.Events.BaseURL, "events-url", cfg.Events.BaseURL, "Site URL of the events API (defaults to the export's site link)")
	fs.StringVar(&cfg.Events.RecordType, "events-type", cfg.Events.RecordType, "Record type that is enriched")

	fs.StringVar(&cfg.Catalog.Path, "db", cfg.Catalog.Path, "Path to the conversion catalog database")
	fs.BoolVar(&f.noCatalog, "no-catalog", false, "Do not record runs in the catalog")
	fs.BoolVar(&f.verbose, "verbose", false, "Enable debug logging")
}

// apply copies the flags that do not map one to one onto cfg.
func (f *conversionFlags) apply(cfg *config.Config) error {
	if f.filterCategories != "" {
		cfg.Records.FilterCategories = config.SplitList(f.filterCategories)
	}
	if f.frontmatterFields != "" {
		cfg.Output.FrontmatterFields = config.SplitList(f.frontmatterFields)
	}
	if f.noCatalog {
		cfg.Catalog.Enabled = false
	}
	if f.noImages {
		cfg.Images.Download = false
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}

	if cfg.Input.ExportPath == "" {
		return fmt.Errorf("required flag -export not provided")
	}
	return cfg.Validate()
}

// runtime wires the components used by a command.
type runtime struct {
	cfg     *config.Config
	logger  logger.Logger
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	store   *services.RecordStore
	service *services.ConversionService
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  log,
		metrics: metrics.New(),
		store:   services.NewRecordStore(),
	}

	rt.service = services.NewConversionService(cfg, log)
	rt.service.SetObserver(rt.metrics)
	rt.service.SetStore(rt.store)

	if cfg.Catalog.Enabled {
		absPath, err := filepath.Abs(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for catalog: %w", err)
		}
		cat, err := catalog.Open(absPath)
		if err != nil {
			return nil, err
		}
		rt.catalog = cat
		rt.service.SetCatalog(cat)
		log.Debug("Catalog opened", logger.String("path", absPath))
	}

	return rt, nil
}

func (rt *runtime) Close() {
	if rt.catalog != nil {
		if err := rt.catalog.Close(); err != nil {
			rt.logger.Warn("Failed to close catalog", logger.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
