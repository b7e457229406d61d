package cmd

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/cli/render"
	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/session"
)

// SessionsCommand returns the sessions command, listing the server-side
// upload history.
func SessionsCommand() *cli.Command {
	return &cli.Command{
		Name:   "sessions",
		Usage:  "List uploaded sessions",
		Flags:  ReadOnlyFlags(),
		Action: sessionsAction,
	}
}

func sessionsAction(c *cli.Context) error {
	env, err := buildEnv(c)
	if err != nil {
		return err
	}
	defer env.Close()

	store := session.NewStore()
	err = env.exec.Execute(c.Context, "list_sessions", func(ctx context.Context) error {
		list, err := env.api.ListSessions(ctx)
		if err != nil {
			return err
		}
		store.Replace(list)
		return nil
	}, client.IsRetriable)
	if err != nil {
		return exitNetworkError(err)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(store.All())
}
