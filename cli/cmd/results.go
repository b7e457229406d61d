package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/cli/render"
	"github.com/sbai-works/drawctl/cli/tui"
	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/poll"
	"github.com/sbai-works/drawctl/types"
)

// ResultsCommand returns the results command.
func ResultsCommand() *cli.Command {
	return &cli.Command{
		Name:      "results",
		Usage:     "Show analysis results for a session",
		ArgsUsage: "<session-id>",
		Flags: append(ReadOnlyFlags(),
			PollIntervalFlag,
			NoCacheFlag,
			TUIFlag,
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep polling until processing reaches a terminal status",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Skip the cached copy and re-fetch from the backend",
			},
		),
		Action: resultsAction,
	}
}

func resultsAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: drawctl results <session-id>", 2)
	}
	sessionID := c.Args().First()

	env, err := buildEnv(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if c.Bool("tui") {
		return tui.RunResults(tui.NewResultsModel(sessionID, env.api, env.poller.Interval(), env.metrics))
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	var doc *types.ResultDocument
	switch {
	case c.Bool("watch"):
		doc, err = watchResults(c, env, sessionID)

	default:
		doc, err = fetchResults(c.Context, env, sessionID, c.Bool("refresh"))
	}
	if err != nil {
		if errors.Is(err, client.ErrSessionNotFound) {
			return cli.Exit("세션을 찾을 수 없습니다: "+sessionID, 1)
		}
		return exitNetworkError(err)
	}

	if cacheErr := env.cache.Put(doc); cacheErr != nil {
		env.logger.Debug("cache store skipped", map[string]any{"error": cacheErr.Error()})
	}
	return r.Render(doc)
}

// fetchResults resolves one document, preferring the local cache for
// completed sessions. Cache writes happen in the caller so the watch path
// shares them.
func fetchResults(ctx context.Context, env *appEnv, sessionID string, refresh bool) (*types.ResultDocument, error) {
	if refresh {
		if err := env.cache.Evict(sessionID); err != nil {
			env.logger.Debug("cache evict failed", map[string]any{"error": err.Error()})
		}
	} else if doc, ok := env.cache.Get(sessionID); ok {
		return doc, nil
	}

	var doc *types.ResultDocument
	err := env.exec.Execute(ctx, "get_results", func(ctx context.Context) error {
		var err error
		doc, err = env.api.GetResults(ctx, sessionID)
		return err
	}, client.IsRetriable)
	return doc, err
}

// watchResults polls until the session reaches a terminal status, echoing
// status transitions to stderr.
func watchResults(c *cli.Context, env *appEnv, sessionID string) (*types.ResultDocument, error) {
	progress := env.logger.Sugar()
	var lastStatus types.Status
	return env.poller.Watch(c.Context, sessionID, func(u poll.Update) {
		if u.Document != nil && u.Document.Status != lastStatus {
			lastStatus = u.Document.Status
			fmt.Fprintf(os.Stderr, "%s: %s\n", sessionID, u.Document.Status.Label())
		}
		if u.Err != nil {
			progress.Warnf("fetch failed, retrying: %v", u.Err)
		}
	})
}
