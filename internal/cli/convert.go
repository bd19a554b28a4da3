package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/wp2md/internal/config"
)

// ConvertCommand converts a WordPress export into markdown files once.
type ConvertCommand struct {
	cfg   *config.Config
	flags conversionFlags
	out   io.Writer
}

func NewConvertCommand(cfg *config.Config) *ConvertCommand {
	return &ConvertCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *ConvertCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	cmd.flags.bind(fs, cmd.cfg)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s convert -export <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Convert a WordPress export (WXR) into markdown files with YAML frontmatter.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Convert posts only:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -export site.xml -output ./content\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Convert pages and custom types too, grouped by year:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -export site.xml -other-types -date-folders year\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Enrich event records from the live site:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -export site.xml -other-types -events -events-url https://example.org\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.flags.apply(cmd.cfg)
}

func (cmd *ConvertCommand) Run() error {
	rt, err := newRuntime(cmd.cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := rt.service.Convert(ctx)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	printSummary(cmd.out, report)
	return nil
}
