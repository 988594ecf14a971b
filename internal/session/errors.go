package session

import "errors"

var (
	// ErrNotConnected is returned when text is sent while the link is down.
	// Nothing is written and the state is unchanged.
	ErrNotConnected = errors.New("not connected")

	// ErrBusy is returned when the outbound queue is full. The text is
	// dropped and the link stays up.
	ErrBusy = errors.New("write queue full")

	// ErrAlreadyConnected is returned when a connect is requested while a
	// link is already being established or is up.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrOpenTimeout is reported when the device did not open in time.
	ErrOpenTimeout = errors.New("timeout")

	// ErrLoopRunning is returned when Run is called on a session that is
	// already running or has finished.
	ErrLoopRunning = errors.New("session loop already started")

	// ErrClosed is returned when a command reaches a session that has stopped.
	ErrClosed = errors.New("session closed")
)
