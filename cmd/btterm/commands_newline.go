package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/types"
	"github.com/suryansh-23/btterm/internal/ui"
)

func newNewlineCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "newline [crlf|cr|lf|none]",
		Short: "Choose the default newline mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := state.cfg.Terminal.Newline
			if len(args) == 1 {
				parsed, ok := types.ParseNewline(args[0])
				if !ok {
					return fmt.Errorf("unknown newline mode %q", args[0])
				}
				mode = parsed
			} else {
				if !isInteractive() {
					return errors.New("newline needs a mode argument when not running interactively")
				}
				selected := string(mode)
				form := huh.NewForm(huh.NewGroup(
					huh.NewSelect[string]().Title("Newline sent after each line").Value(&selected).Options(newlineOptions()...),
				)).WithTheme(ui.Theme())
				if err := form.Run(); err != nil {
					return err
				}
				mode = types.Newline(selected)
			}

			// Reload so flag overrides are not persisted.
			cfg, _, err := config.Load(state.cfgPath)
			if err != nil {
				return err
			}
			cfg.Terminal.Newline = mode
			if err := config.Write(state.cfgPath, cfg); err != nil {
				return err
			}
			state.cfg.Terminal.Newline = mode
			fmt.Fprintf(cmd.OutOrStdout(), "newline=%s (%s)\n", mode, mode.Label())
			return nil
		},
	}
}
