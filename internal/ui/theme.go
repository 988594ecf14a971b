package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Theme returns the huh theme used by btterm's setup forms.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Form.Base = t.Form.Base.PaddingLeft(1)
	t.Group.Title = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	t.Group.Description = lipgloss.NewStyle().Foreground(Muted)

	t.Focused.Title = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(Danger).SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(Danger)

	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(Accent).SetString("› ")
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(Accent)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(Accent)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(Primary)

	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("0")).Background(Primary)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(Primary).Background(lipgloss.Color("0"))

	t.Blurred.Title = lipgloss.NewStyle().Foreground(Muted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(Muted)
	t.Blurred.SelectSelector = lipgloss.NewStyle().SetString("  ")

	t.Focused.NoteTitle = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	return t
}
