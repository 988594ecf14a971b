package main

import (
	"errors"
	"os"
	"strings"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/suryansh-23/btterm/internal/transport"
)

func newConnectCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "connect [port]",
		Short: "Open an interactive session on a serial port",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port := state.cfg.Device.Port
			if len(args) == 1 {
				port = strings.TrimSpace(args[0])
			}
			return runSerial(cmd.Context(), state, port)
		},
	}
}

func newRunCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "run -- <cmd...>",
		Short: "Open an interactive session against a local command under a PTY",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.ArgsLenAtDash() == -1 {
				return errors.New("run requires -- before the command")
			}
			runArgs := cmd.Flags().Args()
			if len(runArgs) == 0 {
				return errors.New("run requires a command after --")
			}
			dialer := transport.PTYDialer{
				Command: runArgs,
				Env:     []string{"BTTERM_WRAPPED=1"},
				Size:    ptySize(),
			}
			return runSession(cmd.Context(), state, dialer, strings.Join(runArgs, " "))
		},
	}
}

func ptySize() pty.Winsize {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return pty.Winsize{}
	}
	return pty.Winsize{Cols: uint16(cols), Rows: uint16(max(rows-3, 1))}
}
