// Package main provides the ccshost native messaging host entrypoint.
//
// The browser launches the binary directly and talks to it over stdin and
// stdout. Chrome passes the caller origin as the first argument (and
// --parent-window on Windows); Firefox passes the manifest path and the
// extension ID. Extra arguments are accepted and only used for logging.
//
// Usage:
//
//	ccshost [--config <path>] [--log-level <level>] [origin...]
//
// Exit codes:
//   - 0: input ended at a frame boundary
//   - 1: fatal framing, output or startup error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/ccshost/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

// exitFatal is the exit code for any fatal error.
const exitFatal = 1

func main() {
	app := &cli.App{
		Name:            "ccshost",
		Usage:           "Native messaging host that saves files for the " + types.HostName + " extension",
		Version:         fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ArgsUsage:       "[origin...]",
		HideHelpCommand: true,
		Flags:           hostFlags(),
		Action:          hostAction,
		ExitErrHandler:  exitErrHandler,
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		os.Exit(exitFatal)
	}
}

// exitErrHandler preserves exit codes from cli.Exit.
// Messages go to stderr; stdout belongs to the protocol.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitFatal)
}
