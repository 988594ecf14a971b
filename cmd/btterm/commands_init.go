package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/suryansh-23/btterm/internal/config"
	"github.com/suryansh-23/btterm/internal/transport"
	"github.com/suryansh-23/btterm/internal/types"
	"github.com/suryansh-23/btterm/internal/ui"
)

const manualPort = "__manual__"

var commonBauds = []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

func newInitCmd(cfgPath *string) *cobra.Command {
	var useDefaults bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Run the first-time setup wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*cfgPath)
			if err != nil {
				return err
			}
			cfg := config.DefaultConfig()
			if useDefaults {
				if exists(path) {
					fmt.Printf("Config exists, overwriting: %s\n", path)
				}
				if err := config.Write(path, cfg); err != nil {
					return err
				}
				fmt.Printf("Wrote config to %s\n", path)
				return nil
			}

			ports, err := transport.ListPorts()
			if err != nil {
				ports = nil
			}
			port := defaultPortSelection(ports, cfg.Device.Port)
			manual := cfg.Device.Port
			baud := strconv.Itoa(cfg.Device.Baud)
			newline := string(cfg.Terminal.Newline)
			localEcho := cfg.Terminal.LocalEcho
			overwrite := false

			form := huh.NewForm(
				huh.NewGroup(huh.NewNote().Title("Environment").Description(envSummary()).Next(true)),
				huh.NewGroup(
					huh.NewConfirm().Title("Config exists. Overwrite?").Value(&overwrite),
				).WithHideFunc(func() bool { return !exists(path) }),
				huh.NewGroup(
					huh.NewSelect[string]().Title("Serial port").Value(&port).Options(portOptions(ports)...),
				),
				huh.NewGroup(
					huh.NewInput().Title("Port path").Value(&manual).Validate(func(v string) error {
						if strings.TrimSpace(v) == "" {
							return errors.New("enter a device path such as /dev/rfcomm0")
						}
						return nil
					}),
				).WithHideFunc(func() bool { return port != manualPort }),
				huh.NewGroup(
					huh.NewSelect[string]().Title("Baud rate").Value(&baud).Options(baudOptions()...),
				),
				huh.NewGroup(
					huh.NewSelect[string]().Title("Newline sent after each line").Value(&newline).Options(newlineOptions()...),
				),
				huh.NewGroup(
					huh.NewConfirm().Title("Echo sent lines locally?").Value(&localEcho),
				),
			).WithTheme(ui.Theme())

			if err := runForm(form); err != nil {
				return err
			}
			if exists(path) && !overwrite {
				return errors.New("init cancelled")
			}

			if port == manualPort {
				port = strings.TrimSpace(manual)
			}
			cfg.Device.Port = port
			cfg.Device.Baud, _ = strconv.Atoi(baud)
			cfg.Terminal.Newline = types.Newline(newline)
			cfg.Terminal.LocalEcho = localEcho

			if err := config.Write(path, cfg); err != nil {
				return err
			}
			fmt.Printf("Wrote config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useDefaults, "default", false, "write default config without prompts")
	return cmd
}

func defaultPortSelection(ports []transport.PortInfo, current string) string {
	for _, p := range ports {
		if p.Name == current {
			return current
		}
	}
	if len(ports) > 0 {
		return ports[0].Name
	}
	return manualPort
}

func portOptions(ports []transport.PortInfo) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(ports)+1)
	for _, p := range ports {
		out = append(out, huh.NewOption(p.Label(), p.Name))
	}
	return append(out, huh.NewOption("Enter a path...", manualPort))
}

func baudOptions() []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(commonBauds))
	for _, b := range commonBauds {
		v := strconv.Itoa(b)
		out = append(out, huh.NewOption(v, v))
	}
	return out
}

func newlineOptions() []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(types.Newlines))
	for _, n := range types.Newlines {
		out = append(out, huh.NewOption(n.Label(), string(n)))
	}
	return out
}
