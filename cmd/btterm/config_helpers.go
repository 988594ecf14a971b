package main

import (
	"os"
	"strings"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/ipc"
)

func resolveConfigPath(override string) (string, error) {
	override = strings.TrimSpace(override)
	if override != "" {
		return override, nil
	}
	if env := strings.TrimSpace(os.Getenv("BTTERM_CONFIG")); env != "" {
		return env, nil
	}
	return config.DefaultPath()
}

// resolveSocketPath picks the control socket for device. BTTERM_SOCKET wins.
func resolveSocketPath(device string) (string, error) {
	if env := strings.TrimSpace(os.Getenv("BTTERM_SOCKET")); env != "" {
		return env, nil
	}
	return ipc.SocketPath(device)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
