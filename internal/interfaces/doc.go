// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Extraction Interfaces
//
//   - ContentTranslator: record body to markdown (internal/importers/extract.go)
//   - RecordEnricher: merges external data into records of one type (internal/importers/pipeline.go)
//   - EventFetcher: one events API request per record (internal/enrichment/enricher.go)
//
// ## Output Interfaces
//
//   - RecordExporter: writes records to storage (internal/exporters/generic.go)
//   - WriteTracker: remembers written files and their content hash (internal/exporters/generic.go)
//   - Tracker: remembers downloaded images (internal/images/downloader.go)
//
// ## Run Interfaces
//
//   - RunCatalog: run bookkeeping plus both trackers (internal/services/interfaces.go)
//   - RunObserver: receives run statistics (internal/services/interfaces.go)
//   - Converter: what the scheduler runs (internal/scheduler/sync.go)
//   - SyncStatus: scheduler state shown by the health check (internal/http/health.go)
//
// # Enriching Another Record Type
//
// To merge data from a different API into records:
//
//  1. Implement importers.RecordEnricher
//
//     type VenueEnricher struct{ client *VenueClient }
//
//     func (e *VenueEnricher) Applies(recordType string) bool { return recordType == "venue" }
//
//     func (e *VenueEnricher) EnrichRecords(ctx context.Context, records []*entities.Record) (int, int) {
//         // one request per record, write only into that record
//     }
//
//  2. Pass it to importers.NewPipeline in internal/services/conversion_service.go
//
//  3. Add a compile-time check to checks.go
//
// # Compile-Time Checks
//
// This package contains compile-time interface checks in checks.go.
// If any implementation doesn't satisfy its interface, compilation fails.
package interfaces
