package main

import (
	"fmt"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/debug"
)

type appState struct {
	cfg      config.Config
	cfgFound bool
	cfgPath  string
	logger   *debug.Logger
}

// exitCodeError ends the process with code after printing msg, if any.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("exit code %d", e.code)
}
