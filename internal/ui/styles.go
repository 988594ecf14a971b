package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/display"
	"github.com/suryansh-23/btterm/internal/types"
)

// Styles maps display span styles to lipgloss styles.
type Styles struct {
	Received lipgloss.Style
	Sent     lipgloss.Style
	Status   lipgloss.Style
}

// NewStyles builds span styles from configured colors. Empty colors leave
// the terminal default.
func NewStyles(colors config.Colors) Styles {
	return Styles{
		Received: colored(colors.Received),
		Sent:     colored(colors.Sent),
		Status:   colored(colors.Status).Italic(true),
	}
}

func colored(c string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c != "" {
		s = s.Foreground(lipgloss.Color(c))
	}
	return s
}

// For returns the style for a span.
func (s Styles) For(style types.Style) lipgloss.Style {
	switch style {
	case types.StyleSent:
		return s.Sent
	case types.StyleStatus:
		return s.Status
	default:
		return s.Received
	}
}

// RenderSegments draws styled display text. Each line is styled separately
// so that wrapping in a viewport keeps colors intact.
func (s Styles) RenderSegments(segs []display.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		text := Printable(seg.Text)
		style := s.For(seg.Style)
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

// Printable drops control characters other than newline and tab. The raw
// text keeps them so that erase counts stay byte-accurate.
func Printable(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, text)
}
