package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/wp2md/internal/cli"
	"github.com/mrlokans/wp2md/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches args to a subcommand and returns the process exit code.
func run(args []string) int {
	name := "convert"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		name = args[0]
		args = args[1:]
	}

	switch name {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "version":
		fmt.Printf("wp2md %s (%s)\n", Version, Commit)
		return 0
	}

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var cmd command
	switch name {
	case "convert":
		cmd = cli.NewConvertCommand(cfg)
	case "serve":
		cmd = cli.NewServeCommand(cfg, Version)
	case "sync":
		cmd = cli.NewSyncCommand(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		return 1
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  convert   Convert a WordPress export to markdown (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  serve     Convert, then serve the records over HTTP\n")
	fmt.Fprintf(os.Stderr, "  sync      Convert on a cron schedule\n")
	fmt.Fprintf(os.Stderr, "  version   Print the version\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment, a .env file and the file named by %s.\n", config.ConfigFileEnv)
	fmt.Fprintf(os.Stderr, "Use '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
