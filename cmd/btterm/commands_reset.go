package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/ui"
)

func newResetCmd(cfgPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the btterm config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*cfgPath)
			if err != nil {
				return err
			}
			if !yes {
				if !isInteractive() {
					return errors.New("reset requires --yes when not running interactively")
				}
				confirm := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().Title("Remove btterm config?").Description(path).Value(&confirm),
				)).WithTheme(ui.Theme())
				if err := form.Run(); err != nil {
					return err
				}
				if !confirm {
					return errors.New("reset cancelled")
				}
			}

			if !exists(path) {
				fmt.Printf("Config not found: %s\n", path)
				return nil
			}
			if err := config.Remove(path); err != nil {
				return err
			}
			if dir := filepath.Dir(path); isDirEmpty(dir) {
				_ = os.Remove(dir)
			}
			fmt.Printf("Removed config: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip confirmation prompts")
	return cmd
}

func isDirEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return len(entries) == 0
}
