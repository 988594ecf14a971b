package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suryansh-23/btterm/internal/debug"
	"github.com/suryansh-23/btterm/internal/ipc"
	"github.com/suryansh-23/btterm/internal/transport"
)

func newDoctorCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Print environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(state)
		},
	}
}

func runDoctor(state *appState) error {
	info := readEnvInfo()
	cfg := state.cfg
	fmt.Printf("platform=%s\n", platformLabel())
	fmt.Printf("term=%s\n", info.term)
	fmt.Printf("tmux=%t\n", info.tmux)
	fmt.Printf("interactive=%t\n", info.interactive)
	fmt.Printf("size=%dx%d\n", info.cols, info.rows)
	fmt.Printf("config_path=%s\n", state.cfgPath)
	fmt.Printf("config_found=%t\n", state.cfgFound)
	fmt.Printf("port=%s\n", cfg.Device.Port)
	fmt.Printf("port_present=%t\n", exists(cfg.Device.Port))
	fmt.Printf("port_char_device=%t\n", isCharDevice(cfg.Device.Port))
	fmt.Printf("line=%d %d%s%s\n", cfg.Device.Baud, cfg.Device.DataBits, parityLetter(cfg.Device.Parity), cfg.Device.StopBits)
	fmt.Printf("newline=%s\n", cfg.Terminal.Newline)
	fmt.Printf("charset=%s\n", cfg.Terminal.Charset)
	fmt.Printf("local_echo=%t\n", cfg.Terminal.LocalEcho)
	fmt.Printf("open_timeout=%s\n", cfg.OpenTimeout())

	if ports, err := transport.ListPorts(); err != nil {
		fmt.Printf("ports_error=%v\n", err)
	} else {
		fmt.Printf("ports=%d\n", len(ports))
	}
	if cfg.Control.Enabled {
		socketPath, err := resolveSocketPath(cfg.Device.Port)
		if err != nil {
			fmt.Printf("socket_error=%v\n", err)
		} else {
			_, statusErr := ipc.Status(socketPath)
			fmt.Printf("socket=%s\n", socketPath)
			fmt.Printf("session_running=%t\n", statusErr == nil)
		}
	}
	if cfg.Debug.Enabled {
		logPath := cfg.Debug.LogFile
		if logPath == "" {
			logPath, _ = debug.DefaultPath()
		}
		fmt.Printf("debug_log=%s\n", logPath)
	}
	return nil
}

func isCharDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func parityLetter(parity string) string {
	switch parity {
	case "odd":
		return "O"
	case "even":
		return "E"
	case "mark":
		return "M"
	case "space":
		return "S"
	default:
		return "N"
	}
}
