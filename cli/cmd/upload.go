package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/cli/render"
	"github.com/sbai-works/drawctl/cli/tui"
	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/poll"
	"github.com/sbai-works/drawctl/session"
)

// UploadCommand returns the upload command.
// Supported inputs are DXF drawings and PDF documents; the backend detects
// the concrete type from the file name and rejects everything else.
func UploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a drawing (DXF, P&ID PDF, or pipe BOM PDF) for analysis",
		ArgsUsage: "<file>",
		Flags: append(ReadOnlyFlags(),
			PollIntervalFlag,
			TUIFlag,
			&cli.BoolFlag{
				Name:    "wait",
				Aliases: []string{"w"},
				Usage:   "Poll until processing finishes and print the result",
			},
		),
		Action: uploadAction,
	}
}

func uploadAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: drawctl upload <file>", 2)
	}

	env, err := buildEnv(c)
	if err != nil {
		return err
	}
	defer env.Close()

	uploader := session.NewUploader(env.api, session.NewStore())
	result, err := uploader.Upload(c.Context, c.Args().First())
	if err != nil {
		return exitUploadError(err)
	}

	if c.Bool("tui") {
		return tui.RunResults(tui.NewResultsModel(result.SessionID, env.api, env.poller.Interval(), env.metrics))
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if !c.Bool("wait") {
		return r.Render(result)
	}

	progress := env.logger.Sugar()
	doc, err := env.poller.Watch(c.Context, result.SessionID, func(u poll.Update) {
		if u.Document != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", u.Document.SessionID, u.Document.Status.Label())
		}
		if u.Err != nil {
			progress.Warnf("fetch failed, retrying: %v", u.Err)
		}
	})
	if err != nil {
		return err
	}

	if cacheErr := env.cache.Put(doc); cacheErr != nil {
		env.logger.Debug("cache store skipped", map[string]any{"error": cacheErr.Error()})
	}
	return r.Render(doc)
}

// exitUploadError translates upload failures into user-facing exits.
func exitUploadError(err error) error {
	var rejected *client.UploadRejectedError
	if errors.As(err, &rejected) {
		msg := rejected.Detail
		if msg == "" {
			msg = rejected.Error()
		}
		return cli.Exit(msg, 1)
	}

	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return cli.Exit(netErr.UserMessage(), 1)
	}

	if errors.Is(err, session.ErrUploadInFlight) {
		return cli.Exit(err.Error(), 1)
	}
	return err
}
