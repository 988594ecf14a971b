package ansi

import "github.com/suryansh-23/btterm/internal/types"

// DefaultMaxSequence is the open-sequence bound used when none is configured.
const DefaultMaxSequence = 32

// Decoder turns a chunked byte stream into display edits. Bytes belonging to
// a control sequence that is still open at the end of a chunk are held back
// and rescanned together with the next chunk, so a chunk boundary never
// changes the output.
//
// A Decoder belongs to one session and must not be fed concurrently.
type Decoder struct {
	scanner Scanner
	state   State
	tail    []byte
}

// NewDecoder returns a decoder that gives up on sequences longer than
// maxSequence bytes. Zero selects DefaultMaxSequence; negative disables the
// bound.
func NewDecoder(maxSequence int) *Decoder {
	if maxSequence == 0 {
		maxSequence = DefaultMaxSequence
	}
	if maxSequence < 0 {
		maxSequence = 0
	}
	return &Decoder{scanner: Scanner{MaxSequence: maxSequence}}
}

// Feed processes a chunk and returns the edits it resolves.
func (d *Decoder) Feed(chunk []byte) []Edit {
	run := chunk
	if len(d.tail) > 0 {
		run = make([]byte, 0, len(d.tail)+len(chunk))
		run = append(run, d.tail...)
		run = append(run, chunk...)
	}

	edits, st, open := d.scanner.Scan(run, State{})
	d.state = st
	if st.Phase == PhaseGround {
		d.tail = d.tail[:0]
	} else {
		d.tail = append(d.tail[:0], run[open:]...)
	}
	return edits
}

// Flush emits any held-back bytes as literal text and returns to Ground.
func (d *Decoder) Flush() []Edit {
	if len(d.tail) == 0 {
		return nil
	}
	edit := Append(d.tail, types.StyleReceived)
	d.Reset()
	return []Edit{edit}
}

// Reset drops held-back bytes without emitting them.
func (d *Decoder) Reset() {
	d.tail = d.tail[:0]
	d.state = State{}
}

// State returns the scanner state after the last Feed.
func (d *Decoder) State() State {
	return d.state
}

// Pending returns a copy of the held-back bytes.
func (d *Decoder) Pending() []byte {
	if len(d.tail) == 0 {
		return nil
	}
	return append([]byte(nil), d.tail...)
}
