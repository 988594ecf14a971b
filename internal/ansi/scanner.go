package ansi

import "github.com/suryansh-23/btterm/internal/types"

const esc = 0x1b

// maxArg bounds the accumulated numeric parameter.
const maxArg = 65535

// Phase identifies the scanner's position inside a control sequence.
type Phase int

const (
	PhaseGround       Phase = iota
	PhaseEsc                // saw ESC
	PhaseBracket            // saw ESC [
	PhaseParam              // collecting digits
	PhaseSeparator          // saw ';' after digits
	PhasePrivate            // saw ESC [ ?
	PhasePrivateParam       // saw ESC [ ? 3
)

func (p Phase) String() string {
	switch p {
	case PhaseGround:
		return "ground"
	case PhaseEsc:
		return "esc"
	case PhaseBracket:
		return "bracket"
	case PhaseParam:
		return "param"
	case PhaseSeparator:
		return "separator"
	case PhasePrivate:
		return "private"
	case PhasePrivateParam:
		return "private-param"
	default:
		return "unknown"
	}
}

// State is the scanner state carried between runs. Arg is zero in Ground.
type State struct {
	Phase Phase
	Arg   int
}

// EditKind identifies a display edit.
type EditKind int

const (
	EditAppend EditKind = iota
	EditErase
	EditSpaces
	EditClear
)

func (k EditKind) String() string {
	switch k {
	case EditAppend:
		return "append"
	case EditErase:
		return "erase"
	case EditSpaces:
		return "spaces"
	case EditClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Edit is one display operation. Edits must be applied in order.
type Edit struct {
	Kind  EditKind
	Bytes []byte
	Count int
	Style types.Style
}

// Append returns an edit appending b in the given style.
func Append(b []byte, style types.Style) Edit {
	return Edit{Kind: EditAppend, Bytes: append([]byte(nil), b...), Style: style}
}

// Erase returns an edit removing the last n characters.
func Erase(n int) Edit {
	return Edit{Kind: EditErase, Count: n}
}

// Spaces returns an edit appending n plain spaces.
func Spaces(n int) Edit {
	return Edit{Kind: EditSpaces, Count: n}
}

// Clear returns an edit emptying the display.
func Clear() Edit {
	return Edit{Kind: EditClear}
}

// Scanner interprets the control-sequence subset used by small embedded CLIs.
// MaxSequence, when positive, caps how many bytes an open sequence may span
// before it is given up on and shown as literal text.
type Scanner struct {
	MaxSequence int
}

// Scan runs p through the state machine with the zero-limit scanner.
func Scan(p []byte, st State) ([]Edit, State, int) {
	return Scanner{}.Scan(p, st)
}

// Scan runs p through the state machine starting from st. It returns the
// edits for every resolved byte, the state after the last byte and the offset
// in p where the still-open sequence starts. The offset is len(p) when the run
// ends in Ground and 0 when the open sequence began before p.
func (s Scanner) Scan(p []byte, st State) ([]Edit, State, int) {
	var edits []Edit
	textStart := -1
	seqStart := 0

	flushText := func(end int) {
		if textStart < 0 {
			return
		}
		edits = appendText(edits, p[textStart:end])
		textStart = -1
	}

	for i, b := range p {
		if st.Phase == PhaseGround {
			if b == esc {
				flushText(i)
				st = State{Phase: PhaseEsc}
				seqStart = i
			} else if textStart < 0 {
				textStart = i
			}
			continue
		}

		st, edits = step(st, b, edits)

		if st.Phase != PhaseGround && s.MaxSequence > 0 && i-seqStart+1 > s.MaxSequence {
			edits = appendText(edits, p[seqStart:i+1])
			st = State{}
		}
	}
	flushText(len(p))

	if st.Phase == PhaseGround {
		return edits, st, len(p)
	}
	return edits, st, seqStart
}

// step applies one byte to a state that is inside a control sequence.
func step(st State, b byte, edits []Edit) (State, []Edit) {
	switch st.Phase {
	case PhaseEsc:
		if b == '[' {
			return State{Phase: PhaseBracket}, edits
		}
		// ESC 7 / ESC 8 (save/restore cursor) and anything else are dropped.
		return State{}, edits

	case PhaseBracket, PhaseParam:
		switch {
		case isDigit(b):
			return State{Phase: PhaseParam, Arg: accumulate(st.Arg, b)}, edits
		case b == ';':
			return State{Phase: PhaseSeparator}, edits
		case b == 'C':
			return State{}, append(edits, Spaces(max(st.Arg, 1)))
		case b == 'D':
			return State{}, append(edits, Erase(max(st.Arg, 1)))
		case b == '?':
			return State{Phase: PhasePrivate}, edits
		default:
			// A, B, H, J, K, m, n are accepted and dropped, as is anything else.
			return State{}, edits
		}

	case PhaseSeparator:
		if isDigit(b) {
			return State{Phase: PhaseParam, Arg: accumulate(st.Arg, b)}, edits
		}
		return State{}, edits

	case PhasePrivate:
		if b == '3' {
			return State{Phase: PhasePrivateParam}, edits
		}
		return State{}, edits

	case PhasePrivateParam:
		// ESC [ ? 3 l and malformed variants both end here.
		return State{}, edits
	}
	return State{}, edits
}

func appendText(edits []Edit, b []byte) []Edit {
	if len(b) == 0 {
		return edits
	}
	if n := len(edits); n > 0 && edits[n-1].Kind == EditAppend && edits[n-1].Style == types.StyleReceived {
		edits[n-1].Bytes = append(edits[n-1].Bytes, b...)
		return edits
	}
	return append(edits, Append(b, types.StyleReceived))
}

func accumulate(arg int, digit byte) int {
	arg = arg*10 + int(digit-'0')
	if arg > maxArg {
		return maxArg
	}
	return arg
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
