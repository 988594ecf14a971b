package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

const killDelay = 2 * time.Second

// PTYDialer runs a local command under a pseudo-terminal and exposes it as a
// Transport. It is handy for driving a simulator or a shell with the same UI
// used for real devices.
type PTYDialer struct {
	Command []string
	Env     []string
	Dir     string
	// Size sets the initial window size; zero leaves the pty default.
	Size pty.Winsize
}

// Dial starts the command. The device name is only used for messages.
func (d PTYDialer) Dial(ctx context.Context, device string) (Transport, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if len(d.Command) == 0 {
		return nil, ErrNoCommand
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The process outlives ctx, so CommandContext would kill it too early.
	cmd := exec.Command(d.Command[0], d.Command[1:]...)
	cmd.Dir = d.Dir
	cmd.Env = append(os.Environ(), d.Env...)

	var (
		ptmx *os.File
		err  error
	)
	if d.Size.Rows > 0 && d.Size.Cols > 0 {
		size := d.Size
		ptmx, err = pty.StartWithSize(cmd, &size)
	} else {
		ptmx, err = pty.Start(cmd)
	}
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", d.Command[0], err)
	}
	return newPTYTransport(ptmx, cmd), nil
}

// PTYTransport is a running command attached to a pty master.
type PTYTransport struct {
	ptmx *os.File
	cmd  *exec.Cmd

	closeOnce sync.Once
	waited    chan struct{}
	waitErr   error
}

func newPTYTransport(ptmx *os.File, cmd *exec.Cmd) *PTYTransport {
	t := &PTYTransport{ptmx: ptmx, cmd: cmd, waited: make(chan struct{})}
	go func() {
		t.waitErr = cmd.Wait()
		close(t.waited)
	}()
	return t
}

// Read returns io.EOF once the child has exited and its output is drained.
func (t *PTYTransport) Read(p []byte) (int, error) {
	n, err := t.ptmx.Read(p)
	if err != nil && isHangup(err) {
		return n, io.EOF
	}
	return n, err
}

func (t *PTYTransport) Write(p []byte) (int, error) {
	return t.ptmx.Write(p)
}

// Resize updates the child's window size.
func (t *PTYTransport) Resize(rows, cols uint16) error {
	return pty.Setsize(t.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

// Close hangs up the pty and waits for the child to exit.
func (t *PTYTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.ptmx.Close()
		select {
		case <-t.waited:
		default:
			if t.cmd.Process != nil {
				_ = t.cmd.Process.Signal(syscall.SIGHUP)
			}
			select {
			case <-t.waited:
			case <-time.After(killDelay):
				if t.cmd.Process != nil {
					_ = t.cmd.Process.Kill()
				}
				<-t.waited
			}
		}
	})
	return err
}

// ExitCode reports the child's exit status once it has exited.
func (t *PTYTransport) ExitCode() (int, bool) {
	select {
	case <-t.waited:
		return exitCode(t.waitErr), true
	default:
		return 0, false
	}
}

func isHangup(err error) bool {
	if errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed) {
		return true
	}
	return errors.Is(err, io.EOF)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}
	return 1
}
