package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/suryansh-23/btterm/internal/ansi"
	"github.com/suryansh-23/btterm/internal/debug"
	"github.com/suryansh-23/btterm/internal/display"
	"github.com/suryansh-23/btterm/internal/types"
)

// Listener receives transport callbacks. Calls for one session must not
// overlap.
type Listener interface {
	OnConnected()
	OnConnectFailed(err error)
	OnData(chunk []byte)
	OnIoError(err error)
	OnDisconnected()
}

// Link is the outbound half of the transport contract.
type Link interface {
	// Open starts connecting to device. The outcome arrives later as
	// OnConnected or OnConnectFailed.
	Open(device string)
	Write(p []byte) error
	Close()
}

// EventKind identifies what changed in an Event.
type EventKind int

const (
	EventState EventKind = iota
	EventOutput
	EventNotice
)

// Event tells a front end that something needs redrawing.
type Event struct {
	Kind   EventKind
	State  State
	Notice string
}

// Options configures a Controller.
type Options struct {
	Device      string
	Newline     types.Newline
	LocalEcho   bool
	MaxSequence int
	Display     *display.Buffer
	Logger      *debug.Logger
	Notify      func(Event)
}

// Controller is the connection state machine. It turns transport callbacks
// into display updates and gates user actions on the current state.
//
// Controller methods other than State, Device and Newline must be called
// from a single goroutine; Session arranges that.
type Controller struct {
	link    Link
	display *display.Buffer
	decoder *ansi.Decoder
	log     *debug.Logger
	notify  func(Event)
	echo    bool
	state   stateBox

	mu      sync.RWMutex
	device  string
	newline types.Newline
}

// NewController returns a disconnected controller driving link.
func NewController(link Link, opts Options) *Controller {
	buf := opts.Display
	if buf == nil {
		buf = display.New(types.CharsetLatin1, 0)
	}
	nl := opts.Newline
	if !nl.Valid() {
		nl = types.NewlineCRLF
	}
	notify := opts.Notify
	if notify == nil {
		notify = func(Event) {}
	}
	return &Controller{
		link:    link,
		display: buf,
		decoder: ansi.NewDecoder(opts.MaxSequence),
		log:     opts.Logger.With("controller"),
		notify:  notify,
		echo:    opts.LocalEcho,
		device:  opts.Device,
		newline: nl,
	}
}

// State returns the current connection state.
func (c *Controller) State() State {
	return c.state.load()
}

// Display returns the buffer the controller writes into.
func (c *Controller) Display() *display.Buffer {
	return c.display
}

func (c *Controller) Device() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.device
}

// SetDevice changes the target of the next Connect.
func (c *Controller) SetDevice(device string) {
	c.mu.Lock()
	c.device = device
	c.mu.Unlock()
}

func (c *Controller) Newline() types.Newline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.newline
}

// SetNewline selects the terminator appended to sent text.
func (c *Controller) SetNewline(n types.Newline) error {
	if !n.Valid() {
		return fmt.Errorf("unknown newline mode %q", n)
	}
	c.mu.Lock()
	c.newline = n
	c.mu.Unlock()
	c.notify(Event{Kind: EventState, State: c.State()})
	return nil
}

// Connect starts opening the configured device.
func (c *Controller) Connect() error {
	if _, ok := c.state.swap(StateConnecting); !ok {
		return ErrAlreadyConnected
	}
	device := c.Device()
	c.log.Info().Str("device", device).Msg("connecting")
	c.decoder.Reset()
	c.status("connecting...")
	c.notifyState()
	c.link.Open(device)
	return nil
}

// Disconnect releases the transport. It is a no-op when already
// disconnected.
func (c *Controller) Disconnect() {
	prev, ok := c.state.swap(StateDisconnected)
	if !ok {
		return
	}
	c.log.Info().Str("from", prev.String()).Msg("disconnect requested")
	c.release()
}

// Send writes text followed by the current newline and echoes it in the
// sent style when local echo is on. ErrBusy leaves the link up and nothing
// is echoed; any other write error drops the link.
func (c *Controller) Send(text string) error {
	if c.State() != StateConnected {
		c.notify(Event{Kind: EventNotice, Notice: ErrNotConnected.Error()})
		return ErrNotConnected
	}
	if err := c.link.Write([]byte(text + c.Newline().Terminator())); err != nil {
		if errors.Is(err, ErrBusy) {
			c.log.Debug().Msg("send rejected, write queue full")
			c.notify(Event{Kind: EventNotice, Notice: err.Error()})
			return err
		}
		c.OnIoError(err)
		return err
	}
	if c.echo {
		c.display.AppendString(text+"\n", types.StyleSent)
		c.notify(Event{Kind: EventOutput})
	}
	return nil
}

// SendCurrentTime sets the device clock from now.
func (c *Controller) SendCurrentTime(now time.Time) error {
	return c.Send(DateCommand(now))
}

// DateCommand formats the shell command that sets a device clock to t.
func DateCommand(t time.Time) string {
	return fmt.Sprintf("sudo date -s \"%s\"", t.Format("2006/01/02 15:04:05"))
}

// Clear empties the display.
func (c *Controller) Clear() {
	c.display.Clear()
	c.notify(Event{Kind: EventOutput})
}

func (c *Controller) OnConnected() {
	if _, ok := c.state.swap(StateConnected); !ok {
		c.log.Debug().Msg("ignoring connected callback")
		return
	}
	c.log.Info().Str("device", c.Device()).Msg("connected")
	c.status("connected")
	c.notifyState()
}

func (c *Controller) OnConnectFailed(err error) {
	if c.State() != StateConnecting {
		c.log.Debug().Err(err).Msg("ignoring connect failure")
		return
	}
	c.state.swap(StateDisconnected)
	c.log.Warn().Err(err).Msg("connect failed")
	c.status("connection failed: " + reason(err))
	c.release()
}

func (c *Controller) OnData(chunk []byte) {
	if c.State() != StateConnected {
		return
	}
	edits := c.decoder.Feed(chunk)
	if len(edits) == 0 {
		return
	}
	c.display.Apply(edits)
	c.notify(Event{Kind: EventOutput})
}

func (c *Controller) OnIoError(err error) {
	switch c.State() {
	case StateConnecting:
		c.OnConnectFailed(err)
	case StateConnected:
		c.state.swap(StateDisconnected)
		c.log.Warn().Err(err).Msg("connection lost")
		c.status("connection lost: " + reason(err))
		c.release()
	}
}

func (c *Controller) OnDisconnected() {
	switch c.State() {
	case StateConnecting:
		c.OnConnectFailed(errPeerClosed)
	case StateConnected:
		c.state.swap(StateDisconnected)
		c.log.Info().Msg("peer closed")
		if edits := c.decoder.Flush(); len(edits) > 0 {
			c.display.Apply(edits)
		}
		c.status("disconnected")
		c.release()
	}
}

func (c *Controller) release() {
	c.decoder.Reset()
	c.link.Close()
	c.notifyState()
}

func (c *Controller) status(msg string) {
	c.display.AppendString(msg+"\n", types.StyleStatus)
	c.notify(Event{Kind: EventOutput})
}

func (c *Controller) notifyState() {
	c.notify(Event{Kind: EventState, State: c.State()})
}

var errPeerClosed = errors.New("disconnected")

func reason(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
