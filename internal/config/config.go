package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"gopkg.in/yaml.v3"

	"github.com/suryansh-23/btterm/internal/clipboard"
	"github.com/suryansh-23/btterm/internal/types"
)

const (
	DefaultConfigVersion = 1
	defaultConfigRelPath = "btterm/config.yaml"
	defaultPort          = "/dev/rfcomm0"
)

var ErrInvalidConfig = errors.New("invalid config")

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level configuration schema.
type Config struct {
	Version int `yaml:"version"`

	Device   Device   `yaml:"device"`
	Terminal Terminal `yaml:"terminal"`
	UI       UI       `yaml:"ui"`
	Control  Control  `yaml:"control"`

	Debug Debug `yaml:"debug"`
}

// Device selects the serial port and its line settings.
type Device struct {
	Port          string `yaml:"port"`
	Baud          int    `yaml:"baud"`
	DataBits      int    `yaml:"data_bits"`
	Parity        string `yaml:"parity"`
	StopBits      string `yaml:"stop_bits"`
	OpenTimeoutMS int    `yaml:"open_timeout_ms"`
}

// Terminal controls how bytes are sent and shown. MaxSequenceBytes bounds an
// open control sequence: zero uses the decoder default and a negative value
// disables the bound.
type Terminal struct {
	Newline          types.Newline `yaml:"newline"`
	Charset          types.Charset `yaml:"charset"`
	MaxSequenceBytes int           `yaml:"max_sequence_bytes"`
	ScrollbackRunes  int           `yaml:"scrollback_runes"`
	LocalEcho        bool          `yaml:"local_echo"`
}

// UI controls the interactive front end.
type UI struct {
	HistorySize int    `yaml:"history_size"`
	Colors      Colors `yaml:"colors"`
	// Clipboard is the helper used to copy scrollback: auto, pbcopy,
	// wl-copy, xclip, xsel or none.
	Clipboard string `yaml:"clipboard"`
}

// Colors are lipgloss colors for each span style. Empty means the terminal
// default.
type Colors struct {
	Received string `yaml:"received"`
	Sent     string `yaml:"sent"`
	Status   string `yaml:"status"`
}

// Control toggles the per-session control socket.
type Control struct {
	Enabled bool `yaml:"enabled"`
}

// Debug controls file logging.
type Debug struct {
	Enabled bool   `yaml:"enabled"`
	LogFile string `yaml:"log_file"`
}

// DefaultConfig returns the canonical default configuration.
func DefaultConfig() Config {
	return Config{
		Version: DefaultConfigVersion,
		Device: Device{
			Port:          defaultPort,
			Baud:          115200,
			DataBits:      8,
			Parity:        "none",
			StopBits:      "1",
			OpenTimeoutMS: 10000,
		},
		Terminal: Terminal{
			Newline:          types.NewlineCRLF,
			Charset:          types.CharsetLatin1,
			MaxSequenceBytes: 32,
			ScrollbackRunes:  256 * 1024,
			LocalEcho:        true,
		},
		UI: UI{
			HistorySize: 100,
			Colors: Colors{
				Received: "",
				Sent:     "#F472B6",
				Status:   "#22D3EE",
			},
			Clipboard: "auto",
		},
		Control: Control{
			Enabled: true,
		},
		Debug: Debug{
			Enabled: false,
			LogFile: "",
		},
	}
}

// DefaultPath returns the default config path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, defaultConfigRelPath), nil
	}
	return filepath.Join(home, ".config", defaultConfigRelPath), nil
}

// Parse parses YAML config content, applying defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads config from disk, applying defaults when missing.
// The boolean return indicates whether a config file was found.
func Load(pathOverride string) (Config, bool, error) {
	path := strings.TrimSpace(pathOverride)
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, false, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), false, nil
		}
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// Validate enforces the supported configuration schema.
func (c Config) Validate() error {
	var errs []string
	if c.Version != DefaultConfigVersion {
		errs = append(errs, fmt.Sprintf("version must be %d", DefaultConfigVersion))
	}
	if c.Device.Baud <= 0 {
		errs = append(errs, "device.baud must be > 0")
	}
	if c.Device.DataBits < 5 || c.Device.DataBits > 8 {
		errs = append(errs, "device.data_bits must be 5..8")
	}
	if _, ok := parseParity(c.Device.Parity); !ok {
		errs = append(errs, "device.parity must be none|odd|even|mark|space")
	}
	if _, ok := parseStopBits(c.Device.StopBits); !ok {
		errs = append(errs, "device.stop_bits must be 1|1.5|2")
	}
	if c.Device.OpenTimeoutMS < 0 {
		errs = append(errs, "device.open_timeout_ms must be >= 0")
	}
	if !c.Terminal.Newline.Valid() {
		errs = append(errs, "terminal.newline must be crlf|cr|lf|none")
	}
	if !validCharset(c.Terminal.Charset) {
		errs = append(errs, "terminal.charset must be latin1|cp437")
	}
	if c.Terminal.ScrollbackRunes < 0 {
		errs = append(errs, "terminal.scrollback_runes must be >= 0")
	}
	if c.UI.HistorySize < 0 {
		errs = append(errs, "ui.history_size must be >= 0")
	}
	colors := []struct{ name, value string }{
		{"received", c.UI.Colors.Received},
		{"sent", c.UI.Colors.Sent},
		{"status", c.UI.Colors.Status},
	}
	for _, color := range colors {
		if !validColor(color.value) {
			errs = append(errs, fmt.Sprintf("ui.colors.%s must be empty, #RRGGBB or 0..255", color.name))
		}
	}
	if !clipboard.Valid(c.UI.Clipboard) {
		errs = append(errs, "ui.clipboard must be auto|pbcopy|wl-copy|xclip|xsel|none")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// SerialMode converts the device settings into a serial mode.
func (c Config) SerialMode() *serial.Mode {
	parity, _ := parseParity(c.Device.Parity)
	stop, _ := parseStopBits(c.Device.StopBits)
	return &serial.Mode{
		BaudRate: c.Device.Baud,
		DataBits: c.Device.DataBits,
		Parity:   parity,
		StopBits: stop,
	}
}

// OpenTimeout returns the connect bound; zero means none.
func (c Config) OpenTimeout() time.Duration {
	return time.Duration(c.Device.OpenTimeoutMS) * time.Millisecond
}

func parseParity(s string) (serial.Parity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n":
		return serial.NoParity, true
	case "odd", "o":
		return serial.OddParity, true
	case "even", "e":
		return serial.EvenParity, true
	case "mark", "m":
		return serial.MarkParity, true
	case "space", "s":
		return serial.SpaceParity, true
	default:
		return serial.NoParity, false
	}
}

func parseStopBits(s string) (serial.StopBits, bool) {
	switch strings.TrimSpace(s) {
	case "", "1":
		return serial.OneStopBit, true
	case "1.5":
		return serial.OnePointFiveStopBits, true
	case "2":
		return serial.TwoStopBits, true
	default:
		return serial.OneStopBit, false
	}
}

func validCharset(cs types.Charset) bool {
	switch cs {
	case types.CharsetLatin1, types.CharsetCP437:
		return true
	default:
		return false
	}
}

func validColor(s string) bool {
	if s == "" || hexColor.MatchString(s) {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}
