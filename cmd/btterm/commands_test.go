package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/ipc"
	"github.com/suryansh-23/btterm/internal/session"
	"github.com/suryansh-23/btterm/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&appState{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitDefaultNewlineReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "btterm", "config.yaml")

	if _, err := execute(t, "--config", path, "init", "--default"); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, found, err := config.Load(path)
	if err != nil || !found {
		t.Fatalf("load: found=%t err=%v", found, err)
	}
	if cfg.Terminal.Newline != types.NewlineCRLF {
		t.Fatalf("newline = %s", cfg.Terminal.Newline)
	}

	out, err := execute(t, "--config", path, "--port", "/dev/ttyUSB9", "newline", "LF")
	if err != nil {
		t.Fatalf("newline: %v", err)
	}
	if !strings.Contains(out, "newline=lf (LF)") {
		t.Fatalf("out = %q", out)
	}
	cfg, _, _ = config.Load(path)
	if cfg.Terminal.Newline != types.NewlineLF {
		t.Fatalf("newline = %s", cfg.Terminal.Newline)
	}
	if cfg.Device.Port == "/dev/ttyUSB9" {
		t.Fatalf("flag override was persisted")
	}

	if _, err := execute(t, "--config", path, "reset", "--yes"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config still present: %v", err)
	}
}

func TestNewlineRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "--config", path, "newline", "crcr"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	err := applyOverrides(&cfg, overrides{port: " /dev/rfcomm1 ", baud: 9600, newline: "cr", debug: true})
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if cfg.Device.Port != "/dev/rfcomm1" || cfg.Device.Baud != 9600 || cfg.Terminal.Newline != types.NewlineCR || !cfg.Debug.Enabled {
		t.Fatalf("cfg = %+v", cfg)
	}
	if err := applyOverrides(&cfg, overrides{newline: "bogus"}); err == nil {
		t.Fatalf("expected newline error")
	}
	if err := applyOverrides(&cfg, overrides{baud: -1}); err == nil {
		t.Fatalf("expected baud error")
	}
}

func TestResolvePaths(t *testing.T) {
	t.Setenv("BTTERM_CONFIG", "/etc/btterm.yaml")
	if got, _ := resolveConfigPath(""); got != "/etc/btterm.yaml" {
		t.Fatalf("config path = %q", got)
	}
	if got, _ := resolveConfigPath("/tmp/x.yaml"); got != "/tmp/x.yaml" {
		t.Fatalf("config path = %q", got)
	}
	t.Setenv("BTTERM_SOCKET", "/tmp/custom.sock")
	if got, _ := resolveSocketPath("/dev/rfcomm0"); got != "/tmp/custom.sock" {
		t.Fatalf("socket path = %q", got)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	t.Setenv("BTTERM_SOCKET", filepath.Join(t.TempDir(), "missing.sock"))
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "--config", path, "status")
	var exitErr *exitCodeError
	if !errors.As(err, &exitErr) || exitErr.code != exitNoSession {
		t.Fatalf("err = %v", err)
	}
}

func TestCtlArguments(t *testing.T) {
	t.Setenv("BTTERM_SOCKET", filepath.Join(t.TempDir(), "missing.sock"))
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "--config", path, "ctl", "newline"); err == nil || !strings.Contains(err.Error(), "requires a mode") {
		t.Fatalf("err = %v", err)
	}
	if _, err := execute(t, "--config", path, "ctl", "clear", "now"); err == nil || !strings.Contains(err.Error(), "takes no arguments") {
		t.Fatalf("err = %v", err)
	}
}

func TestCtlConnectSwitchesDevice(t *testing.T) {
	dir, err := os.MkdirTemp("/tmp", "btterm-cmd")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	socketPath := filepath.Join(dir, "s.sock")
	t.Setenv("BTTERM_SOCKET", socketPath)

	sess := session.New(session.Config{Device: "/dev/rfcomm0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	server, err := ipc.StartServer(socketPath, sess, nil)
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Close() })

	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "--config", path, "ctl", "connect", "/dev/ttyUSB3"); err != nil {
		t.Fatalf("ctl connect: %v", err)
	}
	out, err := execute(t, "--config", path, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "device=/dev/ttyUSB3\n") {
		t.Fatalf("out = %q", out)
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("BTTERM_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "btterm ") {
		t.Fatalf("out = %q", out)
	}
}
