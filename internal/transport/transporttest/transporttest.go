// Package transporttest provides an in-memory transport.Transport for tests.
package transporttest

import (
	"bytes"
	"io"
	"sync"
)

// Transport is an in-memory transport. Reads block until data is queued
// with SendData, like a real serial port would. A chunk larger than the
// caller's buffer is returned over several reads.
type Transport struct {
	mu       sync.Mutex
	readChan chan []byte
	errChan  chan error
	done     chan struct{}
	pending  []byte
	written  bytes.Buffer
	writeErr error
	gate     chan struct{}
	closed   bool
}

// New creates a transport with an empty read queue.
func New() *Transport {
	return &Transport{
		readChan: make(chan []byte, 16),
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Read must not be called concurrently.
func (t *Transport) Read(p []byte) (int, error) {
	if len(t.pending) == 0 {
		select {
		case data, ok := <-t.readChan:
			if !ok {
				return 0, io.EOF
			}
			t.pending = data
		case err := <-t.errChan:
			return 0, err
		}
	}
	n := copy(p, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

// Write blocks while writes are held and fails once the transport is closed.
func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	gate := t.gate
	t.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-t.done:
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	return t.written.Write(p)
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	close(t.readChan)
	return nil
}

// SendData queues data to be returned by Read.
func (t *Transport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// FailRead makes the next blocked Read return err.
func (t *Transport) FailRead(err error) {
	t.errChan <- err
}

// FailWrite makes every later Write return err.
func (t *Transport) FailWrite(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// HoldWrites makes Write block until ReleaseWrites or Close.
func (t *Transport) HoldWrites() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate == nil {
		t.gate = make(chan struct{})
	}
}

// ReleaseWrites lets held and later writes through.
func (t *Transport) ReleaseWrites() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate != nil {
		close(t.gate)
		t.gate = nil
	}
}

// Written returns everything written so far.
func (t *Transport) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written.String()
}

// Closed reports whether Close has been called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
