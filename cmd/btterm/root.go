package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/debug"
	"github.com/suryansh-23/btterm/internal/types"
)

type overrides struct {
	port    string
	baud    int
	newline string
	debug   bool
}

func newRootCmd(state *appState) *cobra.Command {
	var (
		cfgPath string
		flags   overrides
	)

	rootCmd := &cobra.Command{
		Use:          "btterm",
		Short:        "Serial terminal for embedded command lines",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			resolvedPath, err := resolveConfigPath(cfgPath)
			if err != nil {
				return err
			}
			cfg, found, err := config.Load(resolvedPath)
			if err != nil {
				return err
			}
			if err := applyOverrides(&cfg, flags); err != nil {
				return err
			}
			logger, err := debug.New(cfg.Debug.Enabled, cfg.Debug.LogFile)
			if err != nil {
				fmt.Fprintln(os.Stderr, "btterm: debug log unavailable:", err)
			}
			state.cfg = cfg
			state.cfgFound = found
			state.cfgPath = resolvedPath
			state.logger = logger
			state.logger.Info().Str("command", cmd.Name()).Str("config", resolvedPath).Bool("found", found).Msg("start")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerial(cmd.Context(), state, state.cfg.Device.Port)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file path")
	pf.StringVarP(&flags.port, "port", "p", "", "serial port (default from config)")
	pf.IntVarP(&flags.baud, "baud", "b", 0, "baud rate (default from config)")
	pf.StringVar(&flags.newline, "newline", "", "newline mode: crlf|cr|lf|none")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging to a file")

	rootCmd.AddCommand(newConnectCmd(state))
	rootCmd.AddCommand(newRunCmd(state))
	rootCmd.AddCommand(newPortsCmd())
	rootCmd.AddCommand(newInitCmd(&cfgPath))
	rootCmd.AddCommand(newNewlineCmd(state))
	rootCmd.AddCommand(newResetCmd(&cfgPath))
	rootCmd.AddCommand(newSendCmd(state))
	rootCmd.AddCommand(newCtlCmd(state))
	rootCmd.AddCommand(newStatusCmd(state))
	rootCmd.AddCommand(newDoctorCmd(state))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func applyOverrides(cfg *config.Config, flags overrides) error {
	if port := strings.TrimSpace(flags.port); port != "" {
		cfg.Device.Port = port
	}
	if flags.baud < 0 {
		return fmt.Errorf("--baud must be > 0")
	}
	if flags.baud > 0 {
		cfg.Device.Baud = flags.baud
	}
	if flags.newline != "" {
		mode, ok := types.ParseNewline(flags.newline)
		if !ok {
			return fmt.Errorf("unknown newline mode %q", flags.newline)
		}
		cfg.Terminal.Newline = mode
	}
	if flags.debug {
		cfg.Debug.Enabled = true
	}
	return nil
}
