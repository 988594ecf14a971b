package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Logger writes structured diagnostics to a file. The terminal UI owns the
// screen, so nothing is ever logged to stdout or stderr. A nil *Logger is a
// valid no-op logger.
type Logger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// New opens path for appending and returns a logger writing to it. It returns
// nil when logging is disabled. An empty path selects DefaultPath.
func New(enabled bool, path string) (*Logger, error) {
	if !enabled {
		return nil, nil
	}
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := NewWriter(f)
	l.closer = f
	return l, nil
}

// NewWriter returns a logger writing JSON lines to w.
func NewWriter(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// DefaultPath returns $XDG_STATE_HOME/btterm/debug.log.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "btterm", "debug.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".local", "state", "btterm", "debug.log"), nil
}

// With returns a child logger tagged with component.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debug starts a debug-level event. The returned event is nil, and therefore
// inert, when l is nil.
func (l *Logger) Debug() *zerolog.Event {
	if l == nil {
		return nil
	}
	return l.zl.Debug()
}

func (l *Logger) Info() *zerolog.Event {
	if l == nil {
		return nil
	}
	return l.zl.Info()
}

func (l *Logger) Warn() *zerolog.Event {
	if l == nil {
		return nil
	}
	return l.zl.Warn()
}

func (l *Logger) Error() *zerolog.Event {
	if l == nil {
		return nil
	}
	return l.zl.Error()
}

// Infof writes a formatted info line.
func (l *Logger) Infof(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Info().Msgf(format, args...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
