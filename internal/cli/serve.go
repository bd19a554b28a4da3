package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wp2md/internal/config"
	http_controllers "github.com/mrlokans/wp2md/internal/http"
	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/scheduler"
)

// ServeCommand converts the export once and serves a preview of the result.
type ServeCommand struct {
	cfg     *config.Config
	flags   conversionFlags
	version string
	sync    bool
}

func NewServeCommand(cfg *config.Config, version string) *ServeCommand {
	return &ServeCommand{cfg: cfg, version: version}
}

func (cmd *ServeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cmd.flags.bind(fs, cmd.cfg)

	fs.StringVar(&cmd.cfg.HTTP.Host, "host", cmd.cfg.HTTP.Host, "Address to listen on")
	var port int
	fs.IntVar(&port, "port", int(cmd.cfg.HTTP.Port), "Port to listen on")
	fs.BoolVar(&cmd.sync, "sync", false, "Re-run the conversion on the configured sync schedule")
	fs.StringVar(&cmd.cfg.Sync.Schedule, "schedule", cmd.cfg.Sync.Schedule, "Cron schedule used with -sync")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s serve -export <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Convert the export, then serve the records over HTTP:\n")
		fmt.Fprintf(os.Stderr, "  GET /api/records, /api/records/:type/:slug, /records/:type/:slug, /api/runs, /api/runs/:id, /metrics, /health\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.cfg.HTTP.Port = int32(port)
	if cmd.sync {
		if err := scheduler.ValidateCronSchedule(cmd.cfg.Sync.Schedule); err != nil {
			return fmt.Errorf("invalid -schedule %q: %w", cmd.cfg.Sync.Schedule, err)
		}
	}
	return cmd.flags.apply(cmd.cfg)
}

func (cmd *ServeCommand) Run() error {
	rt, err := newRuntime(cmd.cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("Starting wp2md server", logger.String("version", cmd.version))

	// A failed first conversion still serves health and metrics.
	if _, err := rt.service.Convert(ctx); err != nil {
		rt.logger.Error("Initial conversion failed", logger.Error(err))
	}

	routerCfg := http_controllers.RouterConfig{
		Store:          rt.store,
		Catalog:        rt.catalog,
		MetricsHandler: rt.metrics.Handler(),
		OutputDir:      cmd.cfg.Output.Dir,
		Version:        cmd.version,
		Logger:         rt.logger.With(logger.String("component", "http")),
	}

	if cmd.sync {
		sched := scheduler.NewSyncScheduler(rt.service, cmd.cfg.Sync.Schedule, rt.logger.With(logger.String("component", "scheduler")))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		routerCfg.Sync = sched
	}

	gin.SetMode(gin.ReleaseMode)
	router := http_controllers.NewRouter(routerCfg)

	return serve(ctx, router, cmd.cfg, rt.logger)
}

// serve runs the server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, handler http.Handler, cfg *config.Config, log logger.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	log.Info("Shutting down server", logger.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server exiting")
	return nil
}
