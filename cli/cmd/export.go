package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/export"
)

// ExportCommand returns the export command, writing a local XLSX workbook
// from a completed session's preview data.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a session's extraction summary to an XLSX workbook",
		ArgsUsage: "<session-id>",
		Flags: append(CommonFlags(),
			NoCacheFlag,
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Workbook path (default <session-id>.xlsx)",
			},
		),
		Action: exportAction,
	}
}

func exportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: drawctl export <session-id>", 2)
	}
	sessionID := c.Args().First()

	env, err := buildEnv(c)
	if err != nil {
		return err
	}
	defer env.Close()

	doc, err := fetchResults(c.Context, env, sessionID, false)
	if err != nil {
		if errors.Is(err, client.ErrSessionNotFound) {
			return cli.Exit("세션을 찾을 수 없습니다: "+sessionID, 1)
		}
		return exitNetworkError(err)
	}
	if !doc.Status.Terminal() {
		return cli.Exit("아직 처리 중입니다: "+doc.Status.Label(), 1)
	}
	if doc.Status.Errored() {
		return cli.Exit("처리 실패한 세션은 내보낼 수 없습니다: "+string(doc.Status), 1)
	}

	if cacheErr := env.cache.Put(doc); cacheErr != nil {
		env.logger.Debug("cache store skipped", map[string]any{"error": cacheErr.Error()})
	}

	output := c.String("output")
	if output == "" {
		output = sessionID + ".xlsx"
	}

	sheets, err := export.Workbook(doc, output)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(os.Stderr, "%s: %d sheets\n", output, len(sheets))
	return nil
}
