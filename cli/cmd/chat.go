package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/chat"
	"github.com/sbai-works/drawctl/cli/render"
	"github.com/sbai-works/drawctl/cli/tui"
	"github.com/sbai-works/drawctl/types"
)

// ChatCommand returns the chat command. With a message argument it runs a
// single question/answer exchange; without one it opens the interactive
// chat TUI.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Ask questions about a session's extracted data",
		ArgsUsage: "<session-id> [message]",
		Flags:     append(ReadOnlyFlags(), TUIFlag),
		Action:    chatAction,
	}
}

// chatAnswer is the structured response shape for json/yaml output.
type chatAnswer struct {
	Response string       `json:"response"`
	SQLQuery string       `json:"sql_query,omitempty"`
	Table    *types.Table `json:"table,omitempty"`
}

func chatAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: drawctl chat <session-id> [message]", 2)
	}
	sessionID := c.Args().First()
	message := strings.TrimSpace(strings.Join(c.Args().Tail(), " "))

	env, err := buildEnv(c)
	if err != nil {
		return err
	}
	defer env.Close()

	sess := chat.NewSession(sessionID, env.api, env.logger)

	if message == "" || c.Bool("tui") {
		if message == "" && !c.Bool("tui") {
			return cli.Exit("usage: drawctl chat <session-id> <message> (or --tui)", 2)
		}
		return tui.RunChat(tui.NewChatModel(sess))
	}

	if !sess.Send(c.Context, message) {
		return cli.Exit("메시지를 입력하세요", 2)
	}

	msgs := sess.Messages()
	bot := msgs[len(msgs)-1]

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if r.Format() == render.FormatTable {
		printAnswer(bot)
		return nil
	}
	return r.Render(chatAnswer{Response: bot.Content, SQLQuery: bot.SQLQuery, Table: bot.Table})
}

// printAnswer writes the bot reply in human-readable form: answer text,
// the generated SQL, and the data rows capped at chat.DisplayRowCap.
func printAnswer(bot types.ChatMessage) {
	fmt.Println(bot.Content)

	if bot.SQLQuery != "" {
		fmt.Println("\nSQL:", bot.SQLQuery)
	}
	if bot.Table == nil {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(bot.Table.Columns, "\t"))

	rows, hidden := chat.DisplayRows(bot.Table)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%v", cell)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	if hidden > 0 {
		fmt.Printf("... 외 %d개 행\n", hidden)
	}
}
