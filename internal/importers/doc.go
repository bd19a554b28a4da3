// Package importers turns a parsed WordPress export into normalized records.
//
// # Architecture
//
// The pipeline follows a simple flow:
//
//	wxr.Document → ClassifyTypes → Extractor (→ RecordEnricher) → Correlate → []*entities.Record
//	            ↘ CollectAttachedAssets / CollectScrapedAssets ↗
//
// ClassifyTypes selects which post types become records. The Extractor builds
// one Record per item, calling the shared ContentTranslator for the body. A
// RecordEnricher, when configured, augments records of its own subtype. Assets
// are collected from attachment items and from <img> tags in record bodies,
// then Correlate attaches them to records by parent ID and by cover image ID.
//
// # Failure policy
//
// Only a missing document is fatal. An item without an ID or creator yields a
// *MalformedRecordError and is skipped; the count is reported in Result.
// Enrichment failures leave the record in place, unenriched.
//
// # Example Usage
//
//	doc, err := wxr.ReadFile("export.xml")
//	pipeline := importers.NewPipeline(importers.DefaultOptions(), translator, enricher, log)
//	result, err := pipeline.Run(ctx, doc)
package importers
