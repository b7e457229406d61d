package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/iox"
)

// DownloadCommand returns the download command. Without a file name it
// fetches the session's all-artifacts archive; with one, that single file.
func DownloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download session artifacts (archive or a single file)",
		ArgsUsage: "<session-id> [file-name]",
		Flags: append(CommonFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path ('-' for stdout)",
			},
		),
		Action: downloadAction,
	}
}

func downloadAction(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return cli.Exit("usage: drawctl download <session-id> [file-name]", 2)
	}
	sessionID := c.Args().Get(0)
	fileName := c.Args().Get(1)

	env, err := buildEnv(c)
	if err != nil {
		return err
	}
	defer env.Close()

	output := c.String("output")
	if output == "" {
		if fileName != "" {
			output = fileName
		} else {
			output = sessionID + "_results.zip"
		}
	}

	var (
		out      *os.File
		toStdout = output == "-"
	)
	if toStdout {
		out = os.Stdout
	} else {
		out, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer iox.DiscardClose(out)
	}

	n, err := env.api.Download(c.Context, sessionID, fileName, out)
	if err != nil {
		if !toStdout {
			os.Remove(output)
		}
		if errors.Is(err, client.ErrSessionNotFound) {
			return cli.Exit("세션을 찾을 수 없습니다: "+sessionID, 1)
		}
		return exitNetworkError(err)
	}

	if !toStdout {
		fmt.Fprintf(os.Stderr, "%s (%d bytes)\n", output, n)
	}
	return nil
}
