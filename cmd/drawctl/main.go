// Package main provides the drawctl CLI entrypoint.
//
// drawctl talks to the drawing-analysis backend: upload a DXF or PDF
// drawing, poll its processing status, browse extraction results, ask
// questions about the extracted data, and download or export artifacts.
//
// Usage:
//
//	drawctl <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: backend or processing error
//   - 2: usage error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/cli/cmd"
	"github.com/sbai-works/drawctl/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "drawctl",
		Usage:          "Engineering drawing analysis CLI",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.UploadCommand(),
			cmd.SessionsCommand(),
			cmd.ResultsCommand(),
			cmd.ChatCommand(),
			cmd.DownloadCommand(),
			cmd.ExportCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from
// cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	// Check for ExitCoder (from cli.Exit), handles wrapped errors
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

	// Unexpected error - print and exit with code 1
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
