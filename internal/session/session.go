package session

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/suryansh-23/btterm/internal/debug"
	"github.com/suryansh-23/btterm/internal/display"
	"github.com/suryansh-23/btterm/internal/transport"
	"github.com/suryansh-23/btterm/internal/types"
)

const (
	readChunk    = 4096
	writeBacklog = 64
	eventBacklog = 64
)

var errNoDialer = errors.New("no dialer configured")

// Config describes one terminal session.
type Config struct {
	Dialer  transport.Dialer
	Device  string
	Newline types.Newline
	// OpenTimeout bounds a connect attempt; zero waits until cancelled.
	OpenTimeout time.Duration
	LocalEcho   bool
	MaxSequence int
	Display     *display.Buffer
	Logger      *debug.Logger
	Now         func() time.Time
}

// Status is a point-in-time view of a session, safe to take from any
// goroutine.
type Status struct {
	State   State
	Device  string
	Newline types.Newline
	Chars   int
}

type connEventKind int

const (
	connDialed connEventKind = iota
	connData
	connEOF
	connError
)

// connEvent is a tagged message from a dial, read or write goroutine. gen
// identifies the connection attempt that produced it.
type connEvent struct {
	gen  uint64
	kind connEventKind
	tr   transport.Transport
	data []byte
	err  error
}

type command struct {
	fn   func() error
	resp chan error
}

// Session owns one connection lifecycle. Run is the only goroutine that
// touches the controller; user commands and transport events reach it over
// channels and are applied in arrival order.
type Session struct {
	cfg    Config
	ctrl   *Controller
	log    *debug.Logger
	cmds   chan command
	conn   chan connEvent
	events chan Event
	done   chan struct{}
	ran    atomic.Bool

	// Owned by the Run goroutine.
	runCtx     context.Context
	gen        uint64
	cancelDial context.CancelFunc
	tr         transport.Transport
	out        chan []byte
}

// New creates a session. Call Run to start it.
func New(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Session{
		cfg:    cfg,
		log:    cfg.Logger.With("session"),
		cmds:   make(chan command),
		conn:   make(chan connEvent),
		events: make(chan Event, eventBacklog),
		done:   make(chan struct{}),
	}
	s.ctrl = NewController(s, Options{
		Device:      cfg.Device,
		Newline:     cfg.Newline,
		LocalEcho:   cfg.LocalEcho,
		MaxSequence: cfg.MaxSequence,
		Display:     cfg.Display,
		Logger:      cfg.Logger,
		Notify:      s.emit,
	})
	return s
}

// Run processes commands and transport events until ctx is cancelled. The
// link is released and the Events channel closed on return.
func (s *Session) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	s.runCtx = ctx
	defer func() {
		s.ctrl.Disconnect()
		close(s.events)
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.cmds:
			cmd.resp <- cmd.fn()
		case ev := <-s.conn:
			s.handle(ev)
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Events delivers redraw hints. Hints are dropped when the reader falls
// behind; Snapshot and the display always hold the current truth.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Display returns the session's scrollback.
func (s *Session) Display() *display.Buffer {
	return s.ctrl.Display()
}

// Snapshot reports the current status.
func (s *Session) Snapshot() Status {
	return Status{
		State:   s.ctrl.State(),
		Device:  s.ctrl.Device(),
		Newline: s.ctrl.Newline(),
		Chars:   s.ctrl.Display().Len(),
	}
}

func (s *Session) Connect(ctx context.Context) error {
	return s.exec(ctx, s.ctrl.Connect)
}

// ConnectTo switches the device and connects. It fails if a link is up.
func (s *Session) ConnectTo(ctx context.Context, device string) error {
	return s.exec(ctx, func() error {
		if s.ctrl.State() != StateDisconnected {
			return ErrAlreadyConnected
		}
		s.ctrl.SetDevice(device)
		return s.ctrl.Connect()
	})
}

func (s *Session) Disconnect(ctx context.Context) error {
	return s.exec(ctx, func() error {
		s.ctrl.Disconnect()
		return nil
	})
}

// Send writes text and the current newline to the device.
func (s *Session) Send(ctx context.Context, text string) error {
	return s.exec(ctx, func() error { return s.ctrl.Send(text) })
}

// SendCurrentTime sends a date command carrying the local clock.
func (s *Session) SendCurrentTime(ctx context.Context) error {
	return s.exec(ctx, func() error { return s.ctrl.SendCurrentTime(s.cfg.Now()) })
}

func (s *Session) Clear(ctx context.Context) error {
	return s.exec(ctx, func() error {
		s.ctrl.Clear()
		return nil
	})
}

func (s *Session) SetNewline(ctx context.Context, n types.Newline) error {
	return s.exec(ctx, func() error { return s.ctrl.SetNewline(n) })
}

func (s *Session) exec(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, resp: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-cmd.resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Open implements Link.
func (s *Session) Open(device string) {
	s.gen++
	gen := s.gen
	var ctx context.Context
	if s.cfg.OpenTimeout > 0 {
		ctx, s.cancelDial = context.WithTimeout(s.runCtx, s.cfg.OpenTimeout)
	} else {
		ctx, s.cancelDial = context.WithCancel(s.runCtx)
	}
	if s.cfg.Dialer == nil {
		go s.post(connEvent{gen: gen, kind: connDialed, err: errNoDialer})
		return
	}
	go s.dial(ctx, gen, device)
}

// Write implements Link. The bytes are queued for the writer goroutine;
// ErrBusy is returned without blocking when the queue is full.
func (s *Session) Write(p []byte) error {
	if s.out == nil {
		return ErrNotConnected
	}
	select {
	case s.out <- p:
		return nil
	default:
		return ErrBusy
	}
}

// Close implements Link. Events from the released connection are ignored
// from here on.
func (s *Session) Close() {
	s.gen++
	if s.cancelDial != nil {
		s.cancelDial()
		s.cancelDial = nil
	}
	if s.tr != nil {
		close(s.out)
		s.out = nil
		if err := s.tr.Close(); err != nil {
			s.log.Debug().Err(err).Msg("close transport")
		}
		s.tr = nil
	}
}

func (s *Session) handle(ev connEvent) {
	if ev.gen != s.gen {
		if ev.tr != nil {
			s.log.Debug().Uint64("gen", ev.gen).Msg("closing late transport")
			_ = ev.tr.Close()
		}
		return
	}
	switch ev.kind {
	case connDialed:
		if s.cancelDial != nil {
			s.cancelDial()
			s.cancelDial = nil
		}
		if ev.err != nil {
			s.ctrl.OnConnectFailed(ev.err)
			return
		}
		s.tr = ev.tr
		s.out = make(chan []byte, writeBacklog)
		go s.read(ev.gen, ev.tr)
		go s.write(ev.gen, ev.tr, s.out)
		s.ctrl.OnConnected()
	case connData:
		s.ctrl.OnData(ev.data)
	case connEOF:
		s.ctrl.OnDisconnected()
	case connError:
		s.ctrl.OnIoError(ev.err)
	}
}

// post hands ev to the loop. conn is unbuffered, so once Run has returned
// only the done case can fire and the caller keeps ownership of ev.tr.
func (s *Session) post(ev connEvent) bool {
	select {
	case s.conn <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) dial(ctx context.Context, gen uint64, device string) {
	tr, err := s.cfg.Dialer.Dial(ctx, device)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = ErrOpenTimeout
	}
	if err == nil && tr == nil {
		err = errors.New("dialer returned no transport")
	}
	if !s.post(connEvent{gen: gen, kind: connDialed, tr: tr, err: err}) && tr != nil {
		_ = tr.Close()
	}
}

func (s *Session) read(gen uint64, tr transport.Transport) {
	buf := make([]byte, readChunk)
	for {
		n, err := tr.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if !s.post(connEvent{gen: gen, kind: connData, data: chunk}) {
				return
			}
		}
		if err != nil {
			kind := connError
			if errors.Is(err, io.EOF) {
				kind = connEOF
			}
			s.post(connEvent{gen: gen, kind: kind, err: err})
			return
		}
	}
}

func (s *Session) write(gen uint64, tr transport.Transport, out <-chan []byte) {
	for p := range out {
		if _, err := tr.Write(p); err != nil {
			s.post(connEvent{gen: gen, kind: connError, err: err})
			return
		}
	}
}
