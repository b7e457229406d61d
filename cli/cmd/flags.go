// Package cmd provides CLI commands for the drawctl binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags across commands. CLI flags always override config values.
var (
	// ConfigFlag points at an optional drawctl.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to drawctl.yaml config file",
		EnvVars: []string{"DRAWCTL_CONFIG"},
	}

	// APIURLFlag overrides the backend base URL.
	APIURLFlag = &cli.StringFlag{
		Name:    "api-url",
		Usage:   "Backend API base URL",
		EnvVars: []string{"DRAWCTL_API_URL"},
	}

	// TimeoutFlag overrides the per-request HTTP timeout.
	TimeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "HTTP request timeout",
	}

	// VerboseFlag lowers the log floor to debug.
	VerboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// PollIntervalFlag overrides the follow-up fetch delay while watching.
	PollIntervalFlag = &cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "Delay between result fetches while processing",
	}

	// NoCacheFlag bypasses the local completed-document cache.
	NoCacheFlag = &cli.BoolFlag{
		Name:  "no-cache",
		Usage: "Bypass the local result cache",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode",
	}
)

// CommonFlags returns the connection and logging flags every command takes.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		APIURLFlag,
		TimeoutFlag,
		VerboseFlag,
	}
}

// ReadOnlyFlags returns CommonFlags plus output formatting.
func ReadOnlyFlags() []cli.Flag {
	return append(CommonFlags(), FormatFlag)
}
