package tui

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/suryansh-23/btterm/internal/clipboard"
	"github.com/suryansh-23/btterm/internal/display"
	"github.com/suryansh-23/btterm/internal/history"
	"github.com/suryansh-23/btterm/internal/session"
	"github.com/suryansh-23/btterm/internal/types"
	"github.com/suryansh-23/btterm/internal/ui"
)

const (
	commandTimeout = 5 * time.Second
	noticeTTL      = 3 * time.Second
	chromeLines    = 3
)

// Session is the part of a session the UI drives.
type Session interface {
	Events() <-chan session.Event
	Snapshot() session.Status
	Display() *display.Buffer
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Send(ctx context.Context, text string) error
	SendCurrentTime(ctx context.Context) error
	Clear(ctx context.Context) error
	SetNewline(ctx context.Context, n types.Newline) error
}

type eventMsg session.Event

type closedMsg struct{}

type resultMsg struct {
	op   string
	err  error
	done string
}

type clearNoticeMsg struct {
	seq int
}

// Model is the interactive terminal: scrollback on top, a status bar, a
// notice line and the input line at the bottom.
type Model struct {
	sess      Session
	styles    ui.Styles
	history   *history.History
	clipboard string

	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	ready    bool

	status    session.Status
	version   uint64
	rendered  bool
	notice    string
	noticeSeq int
	draft     string
	recalling bool
}

// New returns a model bound to sess.
func New(sess Session, opts Options) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type a command, enter to send"
	in.Focus()
	hist := opts.History
	if hist == nil {
		hist = history.New(0)
	}
	return Model{
		sess:      sess,
		styles:    opts.Styles,
		history:   hist,
		clipboard: opts.Clipboard,
		input:     in,
		status:    sess.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case eventMsg:
		m = m.refresh()
		if msg.Kind == session.EventNotice {
			var cmd tea.Cmd
			m, cmd = m.setNotice(msg.Notice)
			return m, tea.Batch(cmd, m.waitForEvent())
		}
		return m, m.waitForEvent()

	case closedMsg:
		return m, tea.Quit

	case resultMsg:
		m = m.refresh()
		switch {
		case msg.err == nil && msg.done != "":
			return m.setNotice(msg.done)
		case msg.err != nil && !errors.Is(msg.err, session.ErrNotConnected) && !errors.Is(msg.err, session.ErrBusy):
			return m.setNotice(msg.op + ": " + msg.err.Error())
		}
		return m, nil

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit

	case "enter":
		text := m.input.Value()
		m.history.Push(text)
		m.input.Reset()
		m.recalling = false
		m.draft = ""
		return m, m.run("send", func(ctx context.Context) error { return m.sess.Send(ctx, text) })

	case "up":
		if !m.recalling {
			m.draft = m.input.Value()
		}
		if line, ok := m.history.Prev(); ok {
			m.recalling = true
			m.input.SetValue(line)
			m.input.CursorEnd()
		}
		return m, nil

	case "down":
		if !m.recalling {
			return m, nil
		}
		if line, ok := m.history.Next(); ok {
			m.input.SetValue(line)
		} else {
			m.recalling = false
			m.input.SetValue(m.draft)
		}
		m.input.CursorEnd()
		return m, nil

	case "ctrl+l":
		return m, m.run("clear", m.sess.Clear)

	case "ctrl+n":
		next := m.status.Newline.Next()
		return m, m.run("newline", func(ctx context.Context) error { return m.sess.SetNewline(ctx, next) })

	case "ctrl+t":
		return m, m.run("time", m.sess.SendCurrentTime)

	case "ctrl+y":
		return m, m.copyScrollback()

	case "ctrl+o":
		if m.status.State == session.StateDisconnected {
			return m, m.run("connect", m.sess.Connect)
		}
		return m, m.run("disconnect", m.sess.Disconnect)

	case "pgup":
		m.viewport.PageUp()
		return m, nil
	case "pgdown":
		m.viewport.PageDown()
		return m, nil
	case "ctrl+home":
		m.viewport.GotoTop()
		return m, nil
	case "ctrl+end":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	return m.viewport.View() + "\n" +
		ui.StatusBar(m.status, m.width) + "\n" +
		ui.Notice(m.notice) + "\n" +
		m.input.View()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	bodyHeight := max(height-chromeLines, 1)
	if !m.ready {
		m.viewport = viewport.New(width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = bodyHeight
	}
	m.input.Width = max(width-len(m.input.Prompt)-1, 1)
	m.rendered = false
	*m = m.refresh()
}

// refresh pulls the latest status and, when the display changed, redraws
// the scrollback. The view follows new output unless the user scrolled up.
func (m Model) refresh() Model {
	m.status = m.sess.Snapshot()
	buf := m.sess.Display()
	v := buf.Version()
	if !m.ready || (m.rendered && v == m.version) {
		return m
	}
	follow := !m.rendered || m.viewport.AtBottom()
	m.version = v
	m.rendered = true
	m.viewport.SetContent(m.styles.RenderSegments(buf.Segments()))
	if follow {
		m.viewport.GotoBottom()
	}
	return m
}

func (m Model) setNotice(text string) (Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.sess.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) copyScrollback() tea.Cmd {
	text := m.sess.Display().String()
	backend := m.clipboard
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := clipboard.Copy(ctx, backend, text); err != nil {
			return resultMsg{op: "copy", err: err}
		}
		return resultMsg{op: "copy", done: fmt.Sprintf("copied %d chars", utf8.RuneCountInString(text))}
	}
}

func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return resultMsg{op: op, err: fn(ctx)}
	}
}
