package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

type envInfo struct {
	term        string
	tmux        bool
	interactive bool
	cols        int
	rows        int
}

func readEnvInfo() envInfo {
	info := envInfo{
		term:        os.Getenv("TERM"),
		tmux:        os.Getenv("TMUX") != "",
		interactive: isInteractive(),
	}
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err == nil {
		info.cols, info.rows = cols, rows
	}
	return info
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func envSummary() string {
	info := readEnvInfo()
	return fmt.Sprintf("Detected TERM=%s tmux=%t size=%dx%d", info.term, info.tmux, info.cols, info.rows)
}
