package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suryansh-23/btterm/internal/history"
	"github.com/suryansh-23/btterm/internal/ui"
)

// Options tune the interactive terminal.
type Options struct {
	Styles    ui.Styles
	History   *history.History
	Clipboard string
	Mouse     bool
}

// Run shows the terminal until the user quits, ctx is cancelled or the
// session stops.
func Run(ctx context.Context, sess Session, opts Options) error {
	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(os.Stdin),
		tea.WithOutput(os.Stdout),
	}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(New(sess, opts), programOpts...)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
