package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/suryansh-23/btterm/internal/debug"
	"github.com/suryansh-23/btterm/internal/session"
	"github.com/suryansh-23/btterm/internal/types"
)

const (
	defaultTimeout = 2 * time.Second
	maxSocketPath  = 100
	unknownOpError = "unknown operation"
)

// Operations understood by the control socket.
const (
	OpStatus     = "status"
	OpSend       = "send"
	OpClear      = "clear"
	OpConnect    = "connect"
	OpDisconnect = "disconnect"
	OpNewline    = "newline"
	OpTime       = "time"
)

var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrSessionRunning       = errors.New("a session is already listening on this socket")
)

// Target is the session surface the server drives.
type Target interface {
	Snapshot() session.Status
	Connect(ctx context.Context) error
	ConnectTo(ctx context.Context, device string) error
	Disconnect(ctx context.Context) error
	Send(ctx context.Context, text string) error
	SendCurrentTime(ctx context.Context) error
	Clear(ctx context.Context) error
	SetNewline(ctx context.Context, n types.Newline) error
}

type request struct {
	Op     string `json:"op"`
	Text   string `json:"text,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Device string `json:"device,omitempty"`
}

type response struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	State   string `json:"state,omitempty"`
	Device  string `json:"device,omitempty"`
	Newline string `json:"newline,omitempty"`
	Chars   int    `json:"chars,omitempty"`
}

// StatusInfo is what a running session reports about itself.
type StatusInfo struct {
	State   string
	Device  string
	Newline types.Newline
	Chars   int
}

// Server serves control requests for a running session.
type Server struct {
	listener net.Listener
	path     string
	target   Target
	log      *debug.Logger
}

// StartServer listens on a Unix socket at path. A leftover socket from a
// session that is no longer running is removed first.
func StartServer(path string, target Target, logger *debug.Logger) (*Server, error) {
	if target == nil {
		return nil, errors.New("no session to serve")
	}
	if err := clearStale(path); err != nil {
		return nil, err
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, err
	}
	server := &Server{listener: listener, path: path, target: target, log: logger.With("ipc")}
	go server.serve()
	return server, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close shuts down the server and removes the socket file.
func (s *Server) Close() error {
	if s == nil || s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func clearStale(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %s", ErrSessionRunning, path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// SocketPath returns the control socket for device, under $XDG_RUNTIME_DIR
// when set and the OS temp dir otherwise.
func SocketPath(device string) (string, error) {
	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		dir = os.TempDir()
	}
	name := "btterm-" + sanitize(device) + ".sock"
	path := filepath.Join(dir, name)
	if len(path) >= maxSocketPath {
		path = filepath.Join("/tmp", name)
	}
	if len(path) >= maxSocketPath {
		return "", fmt.Errorf("socket path too long")
	}
	return path, nil
}

func sanitize(device string) string {
	device = strings.TrimPrefix(strings.TrimSpace(device), "/dev/")
	if device == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range device {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > 40 {
		out = out[len(out)-40:]
	}
	return out
}

// Status asks a running session for its state.
func Status(socketPath string) (StatusInfo, error) {
	resp, err := call(socketPath, request{Op: OpStatus})
	if err != nil {
		return StatusInfo{}, err
	}
	return StatusInfo{
		State:   resp.State,
		Device:  resp.Device,
		Newline: types.Newline(resp.Newline),
		Chars:   resp.Chars,
	}, nil
}

// Send asks a running session to send text followed by its newline.
func Send(socketPath, text string) error {
	_, err := call(socketPath, request{Op: OpSend, Text: text})
	return err
}

// SetNewline changes the newline mode of a running session.
func SetNewline(socketPath string, n types.Newline) error {
	_, err := call(socketPath, request{Op: OpNewline, Mode: string(n)})
	return err
}

// Connect asks a running session to connect, to device when it is not
// empty and to its current device otherwise.
func Connect(socketPath, device string) error {
	_, err := call(socketPath, request{Op: OpConnect, Device: device})
	return err
}

// Do runs an argument-free operation such as clear, connect, disconnect or
// time.
func Do(socketPath, op string) error {
	_, err := call(socketPath, request{Op: op})
	return err
}

func call(socketPath string, req request) (response, error) {
	conn, err := net.DialTimeout("unix", socketPath, defaultTimeout)
	if err != nil {
		return response{}, err
	}
	defer func() { _ = conn.Close() }()
	if err := conn.SetDeadline(time.Now().Add(defaultTimeout)); err != nil {
		return response{}, err
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return response{}, err
	}
	var resp response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return response{}, err
	}
	if !resp.OK {
		switch resp.Error {
		case "":
			return response{}, fmt.Errorf("%s failed", req.Op)
		case unknownOpError:
			return response{}, ErrUnsupportedOperation
		case session.ErrNotConnected.Error():
			return response{}, session.ErrNotConnected
		case session.ErrAlreadyConnected.Error():
			return response{}, session.ErrAlreadyConnected
		case session.ErrBusy.Error():
			return response{}, session.ErrBusy
		}
		return response{}, errors.New(resp.Error)
	}
	return resp, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Msg("accept")
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	if err := conn.SetDeadline(time.Now().Add(defaultTimeout)); err != nil {
		return
	}

	enc := json.NewEncoder(conn)
	var req request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		_ = enc.Encode(response{OK: false, Error: "invalid request"})
		return
	}
	s.log.Debug().Str("op", req.Op).Msg("request")
	_ = enc.Encode(s.dispatch(req))
}

func (s *Server) dispatch(req request) response {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var err error
	switch req.Op {
	case OpStatus:
		st := s.target.Snapshot()
		return response{
			OK:      true,
			State:   st.State.String(),
			Device:  st.Device,
			Newline: string(st.Newline),
			Chars:   st.Chars,
		}
	case OpSend:
		err = s.target.Send(ctx, req.Text)
	case OpClear:
		err = s.target.Clear(ctx)
	case OpConnect:
		if device := strings.TrimSpace(req.Device); device != "" {
			err = s.target.ConnectTo(ctx, device)
		} else {
			err = s.target.Connect(ctx)
		}
	case OpDisconnect:
		err = s.target.Disconnect(ctx)
	case OpTime:
		err = s.target.SendCurrentTime(ctx)
	case OpNewline:
		mode, ok := types.ParseNewline(req.Mode)
		if !ok {
			return response{OK: false, Error: fmt.Sprintf("unknown newline mode %q", req.Mode)}
		}
		err = s.target.SetNewline(ctx, mode)
	default:
		return response{OK: false, Error: unknownOpError}
	}
	if err != nil {
		return response{OK: false, Error: err.Error()}
	}
	return response{OK: true}
}
