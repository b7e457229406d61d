// Package tui provides Bubble Tea TUI components for the drawctl CLI.
//
// TUI rules:
//   - TUI is opt-in only (--tui flag)
//   - TUI uses the same data payloads as non-TUI rendering
//   - No TUI-exclusive data allowed
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sbai-works/drawctl/types"
)

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(16)

	// ValueStyle for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SuccessStyle for completed states.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// WarningStyle for in-progress states.
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for error states.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	// TabStyle for inactive section tabs.
	TabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	// ActiveTabStyle for the selected section tab.
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor).
			Padding(0, 1)

	// SelectedRowStyle for the cursor row in a table.
	SelectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(highlightColor)

	// UserMsgStyle for the user's side of the chat transcript.
	UserMsgStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// BotMsgStyle for the bot's side of the chat transcript.
	BotMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SQLStyle for the generated query shown under a bot answer.
	SQLStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// StatusStyle returns the style for a session status: green when
// completed, red for the error family, amber while still processing.
func StatusStyle(s types.Status) lipgloss.Style {
	switch {
	case s == types.StatusCompleted:
		return SuccessStyle
	case s.Errored():
		return ErrorStyle
	case s.Active():
		return WarningStyle
	default:
		return ValueStyle
	}
}
