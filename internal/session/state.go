package session

import "sync/atomic"

// State is the lifecycle of the link to the device.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// validTransition reports whether from -> to is an edge of the lifecycle.
func validTransition(from, to State) bool {
	switch from {
	case StateDisconnected:
		return to == StateConnecting
	case StateConnecting:
		return to == StateConnected || to == StateDisconnected
	case StateConnected:
		return to == StateDisconnected
	default:
		return false
	}
}

// stateBox holds a State readable from any goroutine.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) load() State {
	return State(b.v.Load())
}

// swap moves to next if the edge is valid and reports the previous state.
func (b *stateBox) swap(next State) (State, bool) {
	for {
		cur := b.load()
		if !validTransition(cur, next) {
			return cur, false
		}
		if b.v.CompareAndSwap(int32(cur), int32(next)) {
			return cur, true
		}
	}
}
