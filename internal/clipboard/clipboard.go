// Package clipboard copies text to the desktop clipboard through the usual
// command line helpers.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Backend names a clipboard helper.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendPbcopy Backend = "pbcopy"
	BackendWlCopy Backend = "wl-copy"
	BackendXclip  Backend = "xclip"
	BackendXsel   Backend = "xsel"
	BackendNone   Backend = "none"
)

const copyTimeout = 2 * time.Second

var ErrDisabled = errors.New("clipboard disabled")

var (
	lookPath    = exec.LookPath
	execCommand = exec.CommandContext
	goos        = runtime.GOOS
)

// Valid reports whether name is a known backend. Empty means auto.
func Valid(name string) bool {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case "", BackendAuto, BackendPbcopy, BackendWlCopy, BackendXclip, BackendXsel, BackendNone:
		return true
	default:
		return false
	}
}

// Resolve turns a configured backend into a concrete one, probing PATH for
// auto.
func Resolve(name string) (Backend, error) {
	requested := Backend(strings.ToLower(strings.TrimSpace(name)))
	if requested == "" {
		requested = BackendAuto
	}
	if !Valid(string(requested)) {
		return "", fmt.Errorf("unsupported clipboard backend: %q", name)
	}
	if requested != BackendAuto {
		return requested, nil
	}

	candidates := candidates()
	if len(candidates) == 0 {
		return "", errors.New("no clipboard backend available (missing display server)")
	}
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, err := lookPath(string(c)); err == nil {
			return c, nil
		}
		names = append(names, string(c))
	}
	return "", fmt.Errorf("no clipboard backend found; install one of: %s", strings.Join(names, ", "))
}

// Copy places text on the clipboard using the configured backend.
func Copy(ctx context.Context, name, text string) error {
	backend, err := Resolve(name)
	if err != nil {
		return err
	}
	if backend == BackendNone {
		return ErrDisabled
	}
	command, args := backend.command()

	ctx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()
	cmd := execCommand(ctx, command, args...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timeout: %w", command, ctx.Err())
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", command, err, msg)
		}
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}

func (b Backend) command() (string, []string) {
	switch b {
	case BackendXclip:
		return "xclip", []string{"-selection", "clipboard"}
	case BackendXsel:
		return "xsel", []string{"--clipboard", "--input"}
	default:
		return string(b), nil
	}
}

func candidates() []Backend {
	if goos == "darwin" {
		return []Backend{BackendPbcopy}
	}
	var out []Backend
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") ||
		strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		out = append(out, BackendWlCopy)
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		out = append(out, BackendXclip, BackendXsel)
	}
	return out
}
