package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/enrichment"
	"github.com/mrlokans/wp2md/internal/exporters"
	httpserver "github.com/mrlokans/wp2md/internal/http"
	"github.com/mrlokans/wp2md/internal/images"
	"github.com/mrlokans/wp2md/internal/importers"
	"github.com/mrlokans/wp2md/internal/metrics"
	"github.com/mrlokans/wp2md/internal/scheduler"
	"github.com/mrlokans/wp2md/internal/services"
	"github.com/mrlokans/wp2md/internal/translator"
)

// =============================================================================
// Extraction Pipeline
// =============================================================================

// ContentTranslator implementations
var _ importers.ContentTranslator = (*translator.Translator)(nil)

// RecordEnricher implementations
var _ importers.RecordEnricher = (*enrichment.Enricher)(nil)

// EventFetcher implementations
var _ enrichment.EventFetcher = (*enrichment.Client)(nil)

// =============================================================================
// Output
// =============================================================================

// RecordExporter implementations
var _ exporters.RecordExporter = (*exporters.MarkdownExporter)(nil)

// Write and image trackers
var _ exporters.WriteTracker = (*catalog.Catalog)(nil)
var _ images.Tracker = (*catalog.Catalog)(nil)

// =============================================================================
// Runs
// =============================================================================

var _ services.RunCatalog = (*catalog.Catalog)(nil)
var _ services.RunObserver = (*metrics.Metrics)(nil)
var _ scheduler.Converter = (*services.ConversionService)(nil)
var _ httpserver.SyncStatus = (*scheduler.SyncScheduler)(nil)
