package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var logoLines = []string{
	`    __    __  __                       `,
	`   / /_  / /_/ /____  _________ ___    `,
	`  / __ \/ __/ __/ _ \/ ___/ __ '__ \   `,
	` / /_/ / /_/ /_/  __/ /  / / / / / /   `,
	`/_.___/\__/\__/\___/_/  /_/ /_/ /_/    `,
	`                                       `,
}

// LogoFrame renders one frame of the banner, shifting the palette by frame.
func LogoFrame(frame int) string {
	lines := make([]string, len(logoLines))
	for i, line := range logoLines {
		color := Palette[(frame+i)%len(Palette)]
		lines[i] = lipgloss.NewStyle().Foreground(color).Render(line)
	}
	return strings.Join(lines, "\n")
}

// LogoWidth is the widest banner line.
func LogoWidth() int {
	width := 0
	for _, line := range logoLines {
		width = max(width, lipgloss.Width(line))
	}
	return width
}
