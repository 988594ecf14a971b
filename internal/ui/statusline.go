package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/suryansh-23/btterm/internal/session"
)

const keyHints = "^O connect  ^N newline  ^T time  ^L clear  ^Y copy  ^Q quit"

// StatusText is the plain status bar content.
func StatusText(st session.Status) string {
	device := st.Device
	if device == "" {
		device = "(no device)"
	}
	return fmt.Sprintf("%s  %s  nl=%s", st.State, device, st.Newline.Label())
}

// StatusBar renders the status bar padded to width, with key hints on the
// right when they fit.
func StatusBar(st session.Status, width int) string {
	dot := lipgloss.NewStyle().Foreground(StateColor(st.State)).Render("●")
	left := dot + " " + StatusText(st)
	hints := lipgloss.NewStyle().Foreground(Muted).Render(keyHints)

	gap := width - lipgloss.Width(left) - lipgloss.Width(hints)
	if gap < 2 {
		return left
	}
	return left + strings.Repeat(" ", gap) + hints
}

// Notice renders a transient message, such as "not connected".
func Notice(msg string) string {
	if msg == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(Warning).Bold(true).Render(msg)
}
