package transport

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=transport

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoPort is returned when a serial dial is attempted without a port name.
	ErrNoPort = errors.New("transport: serial port name is required")

	// ErrNilContext is returned when Dial is called with a nil context.
	ErrNilContext = errors.New("transport: context is nil")

	// ErrNoCommand is returned when a PTY dial has nothing to run.
	ErrNoCommand = errors.New("transport: command is required")
)

// Transport is an established byte stream to a device.
//
// Read blocks until data arrives and returns io.EOF once the peer has gone
// away. Close unblocks a pending Read and may be called more than once.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to the named device.
//
// Dial may block and must honor cancellation of ctx. The returned Transport
// is not tied to ctx: it stays open until closed.
type Dialer interface {
	Dial(ctx context.Context, device string) (Transport, error)
}
