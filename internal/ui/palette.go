package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/suryansh-23/btterm/internal/session"
)

const (
	colorCyan   = "#22D3EE"
	colorSky    = "#38BDF8"
	colorBlue   = "#60A5FA"
	colorViolet = "#A78BFA"
	colorPink   = "#F472B6"
	colorRose   = "#FB7185"
	colorAmber  = "#FBBF24"
	colorGreen  = "#4ADE80"
	colorMuted  = "#94A3B8"
)

var (
	Primary   = lipgloss.Color(colorCyan)
	Secondary = lipgloss.Color(colorViolet)
	Accent    = lipgloss.Color(colorPink)
	Muted     = lipgloss.Color(colorMuted)
	Warning   = lipgloss.Color(colorAmber)
	Danger    = lipgloss.Color(colorRose)
	Palette   = []lipgloss.Color{Primary, lipgloss.Color(colorSky), lipgloss.Color(colorBlue), Secondary, Accent, Danger}
)

// StateColor returns the indicator color for a connection state.
func StateColor(st session.State) lipgloss.Color {
	switch st {
	case session.StateConnected:
		return lipgloss.Color(colorGreen)
	case session.StateConnecting:
		return Warning
	default:
		return Danger
	}
}
