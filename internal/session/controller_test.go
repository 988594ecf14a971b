package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/suryansh-23/btterm/internal/display"
	"github.com/suryansh-23/btterm/internal/types"
)

type fakeLink struct {
	opened   []string
	written  []string
	closes   int
	writeErr error
}

func (l *fakeLink) Open(device string) { l.opened = append(l.opened, device) }

func (l *fakeLink) Write(p []byte) error {
	if l.writeErr != nil {
		return l.writeErr
	}
	l.written = append(l.written, string(p))
	return nil
}

func (l *fakeLink) Close() { l.closes++ }

type recorder struct {
	events []Event
}

func (r *recorder) notify(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) notices() []string {
	var out []string
	for _, ev := range r.events {
		if ev.Kind == EventNotice {
			out = append(out, ev.Notice)
		}
	}
	return out
}

func newTestController(t *testing.T) (*Controller, *fakeLink, *recorder) {
	t.Helper()
	link := &fakeLink{}
	rec := &recorder{}
	c := NewController(link, Options{
		Device:    "/dev/rfcomm0",
		LocalEcho: true,
		Display:   display.New(types.CharsetLatin1, 0),
		Notify:    rec.notify,
	})
	return c, link, rec
}

func connected(t *testing.T) (*Controller, *fakeLink, *recorder) {
	t.Helper()
	c, link, rec := newTestController(t)
	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	c.OnConnected()
	if c.State() != StateConnected {
		t.Fatalf("state = %s", c.State())
	}
	return c, link, rec
}

func TestSendWhileDisconnected(t *testing.T) {
	c, link, rec := newTestController(t)
	before := c.Display().String()

	err := c.Send("ls")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v", err)
	}
	if len(link.written) != 0 {
		t.Fatalf("written = %q", link.written)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("state = %s", c.State())
	}
	if got := c.Display().String(); got != before {
		t.Fatalf("display changed: %q", got)
	}
	if got := rec.notices(); len(got) != 1 || got[0] != "not connected" {
		t.Fatalf("notices = %q", got)
	}
}

func TestConnectFailedTimeout(t *testing.T) {
	c, link, _ := newTestController(t)
	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if c.State() != StateConnecting {
		t.Fatalf("state = %s", c.State())
	}
	if len(link.opened) != 1 || link.opened[0] != "/dev/rfcomm0" {
		t.Fatalf("opened = %q", link.opened)
	}

	c.OnConnectFailed(ErrOpenTimeout)
	if c.State() != StateDisconnected {
		t.Fatalf("state = %s", c.State())
	}
	if link.closes != 1 {
		t.Fatalf("closes = %d", link.closes)
	}
	out := c.Display().String()
	if strings.Count(out, "connection failed: timeout\n") != 1 {
		t.Fatalf("display = %q", out)
	}
	if out != "connecting...\nconnection failed: timeout\n" {
		t.Fatalf("display = %q", out)
	}

	c.OnConnectFailed(ErrOpenTimeout)
	if strings.Count(c.Display().String(), "connection failed") != 1 {
		t.Fatalf("duplicate status: %q", c.Display().String())
	}
}

func TestConnectTwiceRejected(t *testing.T) {
	c, link, _ := newTestController(t)
	_ = c.Connect()
	if err := c.Connect(); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("err = %v", err)
	}
	if len(link.opened) != 1 {
		t.Fatalf("opened = %q", link.opened)
	}
}

func TestSendAppendsNewlineAndEchoes(t *testing.T) {
	c, link, _ := connected(t)
	if err := c.SetNewline(types.NewlineLF); err != nil {
		t.Fatalf("set newline: %v", err)
	}
	if err := c.Send("help"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(link.written) != 1 || link.written[0] != "help\n" {
		t.Fatalf("written = %q", link.written)
	}
	segs := c.Display().Segments()
	last := segs[len(segs)-1]
	if last.Style != types.StyleSent || last.Text != "help\n" {
		t.Fatalf("last segment = %#v", last)
	}
}

func TestSendNoneNewline(t *testing.T) {
	c, link, _ := connected(t)
	_ = c.SetNewline(types.NewlineNone)
	_ = c.Send("x")
	if link.written[0] != "x" {
		t.Fatalf("written = %q", link.written)
	}
	if err := c.SetNewline("bogus"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSendWriteFailureDropsLink(t *testing.T) {
	c, link, _ := connected(t)
	link.writeErr = errors.New("broken pipe")
	if err := c.Send("x"); err == nil {
		t.Fatalf("expected write error")
	}
	if c.State() != StateDisconnected {
		t.Fatalf("state = %s", c.State())
	}
	if !strings.HasSuffix(c.Display().String(), "connection lost: broken pipe\n") {
		t.Fatalf("display = %q", c.Display().String())
	}
}

func TestSendBusyKeepsLink(t *testing.T) {
	c, link, rec := connected(t)
	before := c.Display().String()
	link.writeErr = ErrBusy
	if err := c.Send("x"); !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v", err)
	}
	if c.State() != StateConnected {
		t.Fatalf("state = %s", c.State())
	}
	if link.closes != 0 {
		t.Fatalf("link closed %d times", link.closes)
	}
	if got := c.Display().String(); got != before {
		t.Fatalf("display = %q", got)
	}
	notices := rec.notices()
	if len(notices) == 0 || notices[len(notices)-1] != "write queue full" {
		t.Fatalf("notices = %q", notices)
	}
}

func TestPeerCloseFlushesOpenSequence(t *testing.T) {
	c, _, _ := connected(t)
	c.OnData([]byte("ok\x1b[1"))
	c.OnDisconnected()
	if got := c.Display().String(); !strings.HasSuffix(got, "ok\x1b[1disconnected\n") {
		t.Fatalf("display = %q", got)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("state = %s", c.State())
	}
}

func TestSendCurrentTime(t *testing.T) {
	c, link, _ := connected(t)
	now := time.Date(2024, 3, 9, 7, 5, 1, 0, time.Local)
	if err := c.SendCurrentTime(now); err != nil {
		t.Fatalf("send time: %v", err)
	}
	want := "sudo date -s \"2024/03/09 07:05:01\"\r\n"
	if link.written[0] != want {
		t.Fatalf("written = %q", link.written[0])
	}
}

func TestDataAppliedWhileConnected(t *testing.T) {
	c, _, _ := connected(t)
	c.Clear()
	c.OnData([]byte("hi\x1b[3"))
	c.OnData([]byte("Cbye"))
	if got := c.Display().String(); got != "hi   bye" {
		t.Fatalf("display = %q", got)
	}
}

func TestDataIgnoredWhenDisconnected(t *testing.T) {
	c, _, _ := newTestController(t)
	c.OnData([]byte("late"))
	if c.Display().Len() != 0 {
		t.Fatalf("display = %q", c.Display().String())
	}
}

func TestPendingTailDroppedOnReconnect(t *testing.T) {
	c, _, _ := connected(t)
	c.OnData([]byte("abc\x1b[2"))
	c.Disconnect()
	_ = c.Connect()
	c.OnConnected()
	c.Clear()
	c.OnData([]byte("Dxy"))
	if got := c.Display().String(); got != "Dxy" {
		t.Fatalf("display = %q", got)
	}
}

func TestIoErrorLosesConnection(t *testing.T) {
	c, link, _ := connected(t)
	c.OnIoError(errors.New("read: input/output error"))
	if c.State() != StateDisconnected {
		t.Fatalf("state = %s", c.State())
	}
	if link.closes != 1 {
		t.Fatalf("closes = %d", link.closes)
	}
	if !strings.HasSuffix(c.Display().String(), "connection lost: read: input/output error\n") {
		t.Fatalf("display = %q", c.Display().String())
	}
}

func TestIoErrorWhileConnectingIsConnectFailure(t *testing.T) {
	c, _, _ := newTestController(t)
	_ = c.Connect()
	c.OnIoError(errors.New("refused"))
	if got := c.Display().String(); got != "connecting...\nconnection failed: refused\n" {
		t.Fatalf("display = %q", got)
	}
}

func TestPeerCloseReportsDisconnected(t *testing.T) {
	c, _, _ := connected(t)
	c.OnDisconnected()
	if c.State() != StateDisconnected {
		t.Fatalf("state = %s", c.State())
	}
	if !strings.HasSuffix(c.Display().String(), "connected\ndisconnected\n") {
		t.Fatalf("display = %q", c.Display().String())
	}
}

func TestDisconnectIsSilentAndIdempotent(t *testing.T) {
	c, link, _ := connected(t)
	before := c.Display().String()
	c.Disconnect()
	c.Disconnect()
	if link.closes != 1 {
		t.Fatalf("closes = %d", link.closes)
	}
	if c.Display().String() != before {
		t.Fatalf("display = %q", c.Display().String())
	}
	c.OnConnected()
	if c.State() != StateDisconnected {
		t.Fatalf("late connected callback changed state to %s", c.State())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateDisconnected, StateConnecting, true},
		{StateDisconnected, StateConnected, false},
		{StateConnecting, StateConnected, true},
		{StateConnecting, StateDisconnected, true},
		{StateConnected, StateDisconnected, true},
		{StateConnected, StateConnecting, false},
		{StateConnected, StateConnected, false},
	}
	for _, tt := range tests {
		if got := validTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("%s -> %s = %v", tt.from, tt.to, got)
		}
	}
}
