package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/suryansh-23/btterm/internal/ipc"
	"github.com/suryansh-23/btterm/internal/types"
)

const exitNoSession = 3

func newSendCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>",
		Short: "Send a line through a running session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			socketPath, err := resolveSocketPath(state.cfg.Device.Port)
			if err != nil {
				return err
			}
			return controlError(ipc.Send(socketPath, strings.Join(args, " ")))
		},
	}
}

func newCtlCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:       "ctl <clear|connect [DEVICE]|disconnect|time|newline MODE>",
		Short:     "Control a running session",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{ipc.OpClear, ipc.OpConnect, ipc.OpDisconnect, ipc.OpTime, ipc.OpNewline},
		RunE: func(cmd *cobra.Command, args []string) error {
			socketPath, err := resolveSocketPath(state.cfg.Device.Port)
			if err != nil {
				return err
			}
			op := strings.ToLower(args[0])
			if op == ipc.OpNewline {
				if len(args) != 2 {
					return errors.New("ctl newline requires a mode: crlf|cr|lf|none")
				}
				mode, ok := types.ParseNewline(args[1])
				if !ok {
					return fmt.Errorf("unknown newline mode %q", args[1])
				}
				return controlError(ipc.SetNewline(socketPath, mode))
			}
			if op == ipc.OpConnect {
				device := ""
				if len(args) == 2 {
					device = args[1]
				}
				return controlError(ipc.Connect(socketPath, device))
			}
			if len(args) != 1 {
				return fmt.Errorf("ctl %s takes no arguments", op)
			}
			return controlError(ipc.Do(socketPath, op))
		},
	}
}

func newStatusCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of a running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socketPath, err := resolveSocketPath(state.cfg.Device.Port)
			if err != nil {
				return err
			}
			info, err := ipc.Status(socketPath)
			if err != nil {
				return controlError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state=%s\n", info.State)
			fmt.Fprintf(out, "device=%s\n", info.Device)
			fmt.Fprintf(out, "newline=%s\n", info.Newline)
			fmt.Fprintf(out, "chars=%d\n", info.Chars)
			fmt.Fprintf(out, "socket=%s\n", socketPath)
			return nil
		},
	}
}

// controlError turns "nothing is listening" into a distinct exit code.
func controlError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
		return &exitCodeError{code: exitNoSession, msg: "btterm: no running session"}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &exitCodeError{code: exitNoSession, msg: "btterm: no running session"}
	}
	return err
}
