package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/wp2md/internal/config"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/scheduler"
)

// SyncCommand re-runs the conversion on a cron schedule until interrupted.
type SyncCommand struct {
	cfg   *config.Config
	flags conversionFlags
	now   bool
}

func NewSyncCommand(cfg *config.Config) *SyncCommand {
	return &SyncCommand{cfg: cfg}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	cmd.flags.bind(fs, cmd.cfg)

	fs.StringVar(&cmd.cfg.Sync.Schedule, "schedule", cmd.cfg.Sync.Schedule, "Cron schedule (minute hour dom month dow)")
	fs.BoolVar(&cmd.now, "now", true, "Run a conversion immediately before waiting for the schedule")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync -export <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Convert the export on a schedule. Unchanged record files are left alone.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Refresh every 30 minutes:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -export site.xml -overwrite -schedule \"*/30 * * * *\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := scheduler.ValidateCronSchedule(cmd.cfg.Sync.Schedule); err != nil {
		return fmt.Errorf("invalid -schedule %q: %w", cmd.cfg.Sync.Schedule, err)
	}
	return cmd.flags.apply(cmd.cfg)
}

func (cmd *SyncCommand) Run() error {
	rt, err := newRuntime(cmd.cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewSyncScheduler(rt.service, cmd.cfg.Sync.Schedule, rt.logger)
	if cmd.now {
		if err := sched.RunNow(ctx); err != nil {
			rt.logger.Error("Initial sync failed", logger.Error(err))
		}
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	<-ctx.Done()
	return nil
}
