package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// RunResults runs the polling results viewer until the user quits.
func RunResults(m ResultsModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunChat runs the chat view until the user quits.
func RunChat(m ChatModel) error {
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
