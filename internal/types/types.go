package types

import "strings"

// Newline is the terminator appended to outbound text.
type Newline string

const (
	NewlineCRLF Newline = "crlf"
	NewlineCR   Newline = "cr"
	NewlineLF   Newline = "lf"
	NewlineNone Newline = "none"
)

// Newlines lists the selectable modes in menu order.
var Newlines = []Newline{NewlineCRLF, NewlineCR, NewlineLF, NewlineNone}

// Terminator returns the bytes sent after each line.
func (n Newline) Terminator() string {
	switch n {
	case NewlineCR:
		return "\r"
	case NewlineLF:
		return "\n"
	case NewlineNone:
		return ""
	default:
		return "\r\n"
	}
}

// Label returns the menu name of the mode.
func (n Newline) Label() string {
	switch n {
	case NewlineCRLF:
		return "CR+LF"
	case NewlineCR:
		return "CR"
	case NewlineLF:
		return "LF"
	case NewlineNone:
		return "None"
	default:
		return string(n)
	}
}

// Valid reports whether n is one of the known modes.
func (n Newline) Valid() bool {
	switch n {
	case NewlineCRLF, NewlineCR, NewlineLF, NewlineNone:
		return true
	default:
		return false
	}
}

// Next returns the mode after n, wrapping around.
func (n Newline) Next() Newline {
	for i, m := range Newlines {
		if m == n {
			return Newlines[(i+1)%len(Newlines)]
		}
	}
	return NewlineCRLF
}

// ParseNewline accepts mode names as well as labels ("CR+LF", "\r\n").
func ParseNewline(s string) (Newline, bool) {
	switch s {
	case "\r\n":
		return NewlineCRLF, true
	case "\r":
		return NewlineCR, true
	case "\n":
		return NewlineLF, true
	}
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "crlf", "cr+lf", "cr lf", `\r\n`:
		return NewlineCRLF, true
	case "cr", `\r`:
		return NewlineCR, true
	case "lf", `\n`:
		return NewlineLF, true
	case "none":
		return NewlineNone, true
	}
	return "", false
}

// Charset selects how received bytes map to display characters.
type Charset string

const (
	CharsetLatin1 Charset = "latin1"
	CharsetCP437  Charset = "cp437"
)

// Style classifies a span of display text.
type Style int

const (
	StyleReceived Style = iota
	StyleSent
	StyleStatus
)

func (s Style) String() string {
	switch s {
	case StyleReceived:
		return "received"
	case StyleSent:
		return "sent"
	case StyleStatus:
		return "status"
	default:
		return "unknown"
	}
}
