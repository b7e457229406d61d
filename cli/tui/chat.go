package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sbai-works/drawctl/chat"
	"github.com/sbai-works/drawctl/types"
)

// sentMsg signals that a blocking send finished and the transcript may
// have new messages.
type sentMsg struct{}

// chatKeyMap defines key bindings for the chat view.
type chatKeyMap struct {
	Quit key.Binding
	Send key.Binding
}

var chatKeys = chatKeyMap{
	Quit: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	Send: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
}

// ChatModel is the Bubble Tea model for the per-session Q&A view.
// The transcript itself lives in chat.Session, which enforces the
// single-flight send rule; the model only drives input and rendering.
type ChatModel struct {
	session *chat.Session
	input   textinput.Model
	spin    spinner.Model

	width    int
	height   int
	quitting bool
}

// NewChatModel creates a chat view over an existing transcript.
func NewChatModel(session *chat.Session) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "질문을 입력하세요..."
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = WarningStyle

	return ChatModel{session: session, input: ti, spin: sp}
}

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.session.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sentMsg:
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, chatKeys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, chatKeys.Send):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input line to the transcript. Session.Send rejects
// empty input and overlapping sends on its own; the input box is cleared
// only when the send was actually accepted.
func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" || m.session.InFlight() {
		return m, nil
	}

	m.input.Reset()
	session := m.session
	send := func() tea.Msg {
		session.Send(context.Background(), text)
		return sentMsg{}
	}
	return m, tea.Batch(send, m.spin.Tick)
}

// View implements tea.Model.
func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("도면 질의응답"))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("Session: " + m.session.SessionID()))
	b.WriteString("\n\n")

	for _, msg := range m.session.Messages() {
		b.WriteString(renderChatMessage(msg))
	}

	if m.session.InFlight() {
		b.WriteString(m.spin.View() + " 응답 대기 중...\n")
	}

	b.WriteString("\n" + m.input.View())
	b.WriteString("\n" + HelpStyle.Render("enter: send • esc: quit"))
	return b.String()
}

func renderChatMessage(msg types.ChatMessage) string {
	var b strings.Builder

	switch msg.Role {
	case types.RoleUser:
		b.WriteString(UserMsgStyle.Render("나> ") + msg.Content + "\n")
	default:
		b.WriteString(BotMsgStyle.Render(msg.Content) + "\n")
		if msg.SQLQuery != "" {
			b.WriteString(SQLStyle.Render("SQL: "+msg.SQLQuery) + "\n")
		}
		if msg.Table != nil {
			b.WriteString(renderChatTable(msg.Table))
		}
	}

	b.WriteString("\n")
	return b.String()
}

// renderChatTable renders a bot table capped at chat.DisplayRowCap rows,
// with a trailing indicator for anything the cap hid.
func renderChatTable(t *types.Table) string {
	var b strings.Builder

	b.WriteString(HelpStyle.Render(strings.Join(t.Columns, " | ")) + "\n")

	rows, hidden := chat.DisplayRows(t)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%v", cell)
		}
		b.WriteString(ValueStyle.Render(strings.Join(cells, " | ")) + "\n")
	}
	if hidden > 0 {
		b.WriteString(HelpStyle.Render(fmt.Sprintf("... 외 %d개 행", hidden)) + "\n")
	}
	return b.String()
}
