// Package enrichment augments event records with details fetched from the
// site's events REST endpoint.
package enrichment

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/logger"
)

// AddressMode selects how address components are joined.
type AddressMode string

const (
	// AddressStrict joins the non-blank components with ", ".
	AddressStrict AddressMode = "strict"
	// AddressAll joins all four components, blank ones included.
	AddressAll AddressMode = "all"
)

// EventFetcher fetches event details for one record.
type EventFetcher interface {
	FetchEvent(ctx context.Context, id string) (*EventData, error)
}

// Options controls which records are enriched and how requests are paced.
type Options struct {
	RecordType string
	// RequestDelay is the fixed interval between two request dispatches.
	RequestDelay time.Duration
	// MaxInFlight bounds concurrently outstanding requests.
	MaxInFlight int
	AddressMode AddressMode
}

// DefaultOptions returns the pacing used against a live site.
func DefaultOptions() Options {
	return Options{
		RecordType:   "event",
		RequestDelay: 5 * time.Second,
		MaxInFlight:  4,
		AddressMode:  AddressStrict,
	}
}

type outcome struct {
	data *EventData
	err  error
}

// Enricher merges event details into the frontmatter of records of one type.
type Enricher struct {
	fetcher EventFetcher
	opts    Options
	logger  logger.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(fetcher EventFetcher, opts Options, log logger.Logger) *Enricher {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 1
	}
	if opts.AddressMode == "" {
		opts.AddressMode = AddressStrict
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Enricher{fetcher: fetcher, opts: opts, logger: log}
}

// Applies reports whether records of recordType are enriched.
func (e *Enricher) Applies(recordType string) bool {
	return recordType != "" && recordType == e.opts.RecordType
}

// EnrichRecords fetches details for every record, dispatching one request per
// RequestDelay with at most MaxInFlight outstanding. Each result lands in its
// own slot and is merged after all requests finish, so records keep their
// input order. A failed record keeps its frontmatter untouched.
func (e *Enricher) EnrichRecords(ctx context.Context, records []*entities.Record) (enriched, failed int) {
	limit := rate.Inf
	if e.opts.RequestDelay > 0 {
		limit = rate.Every(e.opts.RequestDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	outcomes := make([]outcome, len(records))
	var g errgroup.Group
	g.SetLimit(e.opts.MaxInFlight)

	for i, record := range records {
		if err := limiter.Wait(ctx); err != nil {
			for j := i; j < len(records); j++ {
				outcomes[j] = outcome{err: err}
			}
			break
		}
		g.Go(func() error {
			data, err := e.fetcher.FetchEvent(ctx, record.Meta.ID)
			outcomes[i] = outcome{data: data, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, record := range records {
		out := outcomes[i]
		if out.err != nil || out.data == nil {
			failed++
			e.logger.Warn("Event enrichment failed",
				logger.String("record_id", record.Meta.ID),
				logger.Error(out.err),
			)
			continue
		}
		e.apply(record, out.data)
		enriched++
	}

	e.logger.Info("Event enrichment finished",
		logger.Int("enriched", enriched),
		logger.Int("failed", failed),
	)
	return enriched, failed
}

func (e *Enricher) apply(record *entities.Record, data *EventData) {
	record.Frontmatter.Event = &entities.EventDetails{
		Start:     data.StartDatetime.String(),
		End:       data.EndDatetime.String(),
		Venue:     data.Venue.String(),
		Address:   ComposeAddress(e.opts.AddressMode, data.Address.String(), data.City.String(), data.Province.String(), data.PostalCode.String()),
		SourceURL: data.ICalSourceURL.String(),
	}
}

// ComposeAddress joins address, city, province and postal code.
func ComposeAddress(mode AddressMode, address, city, province, postalCode string) string {
	parts := []string{address, city, province, postalCode}
	if mode == AddressAll {
		return strings.Join(parts, ", ")
	}

	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
