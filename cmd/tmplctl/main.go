// Command tmplctl is the thin CLI shell around the template engine
// core: it wires config, registry, renderer, cache, and resolver
// together and exposes render/resolve/update alongside the
// cache/snapshot/lifecycle management commands.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tmplctl/internal/version"
)

var cleanupFuncs []func()

// colorEnabled disables color when stdout isn't a terminal
// (piped/redirected).
var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func init() {
	color.NoColor = !colorEnabled
}

func main() {
	app := &cli.App{
		Name:                   "tmplctl",
		Usage:                  "Discover, render, cache, and resolve parameterized project templates",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (relative to --root)",
				Value:   ".tmplctl.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
				Value:   ".",
			},
		},
		Commands: []*cli.Command{
			renderCommand,
			resolveCommand,
			updateCommand,
			cacheCommand,
			lifecycleCommand,
			snapshotCommand,
			benchmarkCommand,
		},
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		runCleanup()
		os.Exit(130)
	}()

	defer runCleanup()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(exitCodeFor(err))
	}
}

func runCleanup() {
	for _, f := range cleanupFuncs {
		f()
	}
}

// exitCodeFor maps a failed command to its exit code; commands that
// don't carry a specific contract fall back to a generic failure code.
func exitCodeFor(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}
