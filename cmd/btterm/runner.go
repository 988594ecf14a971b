package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/suryansh-23/btterm/internal/display"
	"github.com/suryansh-23/btterm/internal/history"
	"github.com/suryansh-23/btterm/internal/ipc"
	"github.com/suryansh-23/btterm/internal/session"
	"github.com/suryansh-23/btterm/internal/transport"
	"github.com/suryansh-23/btterm/internal/tui"
	"github.com/suryansh-23/btterm/internal/ui"
)

func runSerial(ctx context.Context, state *appState, port string) error {
	if port == "" {
		return transport.ErrNoPort
	}
	dialer := transport.SerialDialer{Mode: state.cfg.SerialMode()}
	return runSession(ctx, state, dialer, port)
}

// runSession owns one interactive session: the event loop, the control
// socket and the terminal UI. It returns when the UI exits.
func runSession(ctx context.Context, state *appState, dialer transport.Dialer, device string) error {
	if !isInteractive() {
		return errors.New("btterm needs an interactive terminal")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := state.cfg
	logger := state.logger
	sess := session.New(session.Config{
		Dialer:      dialer,
		Device:      device,
		Newline:     cfg.Terminal.Newline,
		OpenTimeout: cfg.OpenTimeout(),
		LocalEcho:   cfg.Terminal.LocalEcho,
		MaxSequence: cfg.Terminal.MaxSequenceBytes,
		Display:     display.New(cfg.Terminal.Charset, cfg.Terminal.ScrollbackRunes),
		Logger:      logger,
	})
	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	if cfg.Control.Enabled {
		closeServer, err := startControlServer(device, sess, state)
		if err != nil {
			fmt.Fprintln(os.Stderr, "btterm: control socket unavailable:", err)
		} else {
			defer closeServer()
		}
	}

	if err := sess.Connect(ctx); err != nil {
		cancel()
		<-runErr
		return err
	}

	err := tui.Run(ctx, sess, tui.Options{
		Styles:    ui.NewStyles(cfg.UI.Colors),
		History:   history.New(cfg.UI.HistorySize),
		Clipboard: cfg.UI.Clipboard,
	})
	cancel()
	return errors.Join(err, <-runErr)
}

func startControlServer(device string, sess *session.Session, state *appState) (func(), error) {
	socketPath, err := resolveSocketPath(device)
	if err != nil {
		return nil, err
	}
	server, err := ipc.StartServer(socketPath, sess, state.logger)
	if err != nil {
		return nil, err
	}
	state.logger.Info().Str("socket", server.Path()).Msg("control socket listening")
	return func() { _ = server.Close() }, nil
}
