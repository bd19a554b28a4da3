package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/services"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Converter runs one conversion.
type Converter interface {
	Convert(ctx context.Context) (*services.ConversionReport, error)
}

// SyncScheduler re-runs the conversion on a cron schedule. A tick that
// fires while the previous run is still going is skipped.
type SyncScheduler struct {
	converter Converter
	schedule  string
	logger    logger.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	inFlight atomic.Bool
	lastErr  atomic.Value
}

func NewSyncScheduler(converter Converter, schedule string, log logger.Logger) *SyncScheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &SyncScheduler{
		converter: converter,
		schedule:  schedule,
		logger:    log,
		cron:      cron.New(cron.WithParser(cronParser)),
	}
}

// Start schedules the sync job. Cancelling ctx stops the scheduler.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	entryID, err := s.cron.AddFunc(s.schedule, func() {
		_ = s.runSync(runCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID
	s.cancelFunc = cancel

	s.cron.Start()
	s.isRunning = true

	next, _ := GetNextRunTime(s.schedule)
	s.logger.Info("Sync scheduler started",
		logger.String("schedule", s.schedule),
		logger.String("description", GetCronDescription(s.schedule)),
		logger.String("next_run", next.Format(time.RFC3339)),
	)

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(runCtx.Done())

	return nil
}

// Stop cancels a running sync, waits for it to return and stops the
// scheduler.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cancelFunc()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	s.cancelFunc = nil

	s.logger.Info("Sync scheduler stopped")
}

// RunNow triggers a sync immediately and waits for it.
func (s *SyncScheduler) RunNow(ctx context.Context) error {
	return s.runSync(ctx)
}

func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sync will occur.
func (s *SyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// LastError returns the error of the most recent sync, nil after a success.
func (s *SyncScheduler) LastError() error {
	if v, ok := s.lastErr.Load().(errorBox); ok {
		return v.err
	}
	return nil
}

type errorBox struct{ err error }

// ErrSyncSkipped is returned by RunNow while another sync is running.
var ErrSyncSkipped = errors.New("sync skipped: previous run still in progress")

func (s *SyncScheduler) runSync(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Sync skipped, previous run still in progress")
		return ErrSyncSkipped
	}
	defer s.inFlight.Store(false)

	s.logger.Info("Sync starting")
	report, err := s.converter.Convert(ctx)
	s.lastErr.Store(errorBox{err: err})
	if err != nil {
		s.logger.Error("Sync failed", logger.Error(err))
		return err
	}

	s.logger.Info("Sync finished",
		logger.Int("records", report.TotalRecords()),
		logger.Int("written", report.Export.RecordsWritten),
		logger.Duration("duration", report.Duration),
	)
	return nil
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when a schedule fires next.
func GetNextRunTime(schedule string) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(time.Now()), nil
}
