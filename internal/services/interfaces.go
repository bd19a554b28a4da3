package services

import (
	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/exporters"
	"github.com/mrlokans/wp2md/internal/images"
	"github.com/mrlokans/wp2md/internal/metrics"
)

// RunCatalog remembers conversion runs and what they wrote.
// It is implemented by *catalog.Catalog.
type RunCatalog interface {
	exporters.WriteTracker
	images.Tracker
	StartRun(exportPath, outputDir string) (string, error)
	FinishRun(runID string, stats catalog.RunStats, runErr error) error
}

// RunObserver receives the outcome of every run.
// It is implemented by *metrics.Metrics.
type RunObserver interface {
	ObserveRun(stats metrics.RunStats)
}
