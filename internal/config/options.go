package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smazurov/pcmcap/internal/capture"
	"github.com/smazurov/pcmcap/internal/logging"
	"github.com/smazurov/pcmcap/pkg/linuxav/alsa"
)

// Options is the flat set of settings for a capture run. Field names map to
// CLI flags (PeriodSize -> --period-size), `toml` tags to config file keys
// and `env` tags to PCMCAP_* variables.
type Options struct {
	Config string

	// Capture settings
	Card        int    `toml:"capture.card" env:"CAPTURE_CARD"`
	Device      int    `toml:"capture.device" env:"CAPTURE_DEVICE"`
	Channels    int    `toml:"capture.channels" env:"CAPTURE_CHANNELS"`
	Rate        int    `toml:"capture.rate" env:"CAPTURE_RATE"`
	PeriodSize  int    `toml:"capture.period_size" env:"CAPTURE_PERIOD_SIZE"`
	PeriodCount int    `toml:"capture.period_count" env:"CAPTURE_PERIOD_COUNT"`
	Format      string `toml:"capture.format" env:"CAPTURE_FORMAT"`
	Output      string `toml:"capture.output" env:"CAPTURE_OUTPUT"`
	StrictExit  bool   `toml:"capture.strict_exit" env:"CAPTURE_STRICT_EXIT"`

	// Feature flags
	FeaturesLed bool `toml:"features.led" env:"FEATURES_LED"`

	// Metrics settings
	MetricsAddr string `toml:"metrics.addr" env:"METRICS_ADDR"`

	// Logging settings
	LoggingLevel     string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingFile      string `toml:"logging.file" env:"LOGGING_FILE"`
	LoggingNoJournal bool   `toml:"logging.no_journal" env:"LOGGING_NO_JOURNAL"`
	LoggingCapture   string `toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingAlsa      string `toml:"logging.alsa" env:"LOGGING_ALSA"`
	LoggingMetrics   string `toml:"logging.metrics" env:"LOGGING_METRICS"`
	LoggingSystemd   string `toml:"logging.systemd" env:"LOGGING_SYSTEMD"`
	LoggingLed       string `toml:"logging.led" env:"LOGGING_LED"`
}

// DefaultConfigPath is read when --config is not given. It may be absent.
const DefaultConfigPath = "pcmcap.toml"

// Defaults returns Options populated with the stock capture settings.
func Defaults() Options {
	c := capture.Defaults()
	return Options{
		Config:        DefaultConfigPath,
		Card:          int(c.Card),
		Device:        int(c.Device),
		Channels:      int(c.Channels),
		Rate:          int(c.Rate),
		PeriodSize:    int(c.PeriodSize),
		PeriodCount:   int(c.PeriodCount),
		Format:        c.Format,
		Output:        c.Output,
		LoggingLevel:  "info",
		LoggingFormat: "text",
	}
}

// CaptureConfig converts validated options to a capture configuration.
func (o *Options) CaptureConfig() capture.Config {
	return capture.Config{
		Card:        uint(o.Card),
		Device:      uint(o.Device),
		Channels:    uint32(o.Channels),
		Rate:        uint32(o.Rate),
		PeriodSize:  uint32(o.PeriodSize),
		PeriodCount: uint32(o.PeriodCount),
		Format:      o.Format,
		Output:      o.Output,
	}
}

// Validate checks ranges and names. All problems are reported together.
func (o *Options) Validate() error {
	var errs []error
	if o.Card < 0 {
		errs = append(errs, fmt.Errorf("card must be >= 0, got %d", o.Card))
	}
	if o.Device < 0 {
		errs = append(errs, fmt.Errorf("device must be >= 0, got %d", o.Device))
	}
	if o.Channels < 1 || o.Channels > 256 {
		errs = append(errs, fmt.Errorf("channels must be in [1, 256], got %d", o.Channels))
	}
	if o.Rate < 1000 || o.Rate > 768000 {
		errs = append(errs, fmt.Errorf("rate must be in [1000, 768000] Hz, got %d", o.Rate))
	}
	if o.PeriodSize < 1 {
		errs = append(errs, fmt.Errorf("period size must be > 0, got %d", o.PeriodSize))
	}
	if o.PeriodCount < 2 {
		errs = append(errs, fmt.Errorf("period count must be >= 2, got %d", o.PeriodCount))
	}
	if _, err := alsa.ParseFormat(o.Format); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(o.Output) == "" {
		errs = append(errs, errors.New("output path must not be empty"))
	}
	if !logging.ValidLevel(o.LoggingLevel) {
		errs = append(errs, fmt.Errorf("invalid logging level %q", o.LoggingLevel))
	}
	if o.LoggingFormat != "text" && o.LoggingFormat != "json" {
		errs = append(errs, fmt.Errorf("logging format must be text or json, got %q", o.LoggingFormat))
	}
	for module, level := range o.moduleLevels() {
		if level != "" && !logging.ValidLevel(level) {
			errs = append(errs, fmt.Errorf("invalid %s logging level %q", module, level))
		}
	}
	return errors.Join(errs...)
}

// LoggingConfig builds the logging configuration. Modules without an
// explicit level follow the global one.
func (o *Options) LoggingConfig() logging.Config {
	modules := make(map[string]string)
	for module, level := range o.moduleLevels() {
		if level != "" {
			modules[module] = level
		}
	}
	return logging.Config{
		Level:     o.LoggingLevel,
		Format:    o.LoggingFormat,
		Modules:   modules,
		File:      o.LoggingFile,
		NoJournal: o.LoggingNoJournal,
	}
}

func (o *Options) moduleLevels() map[string]string {
	return map[string]string{
		"capture": o.LoggingCapture,
		"alsa":    o.LoggingAlsa,
		"metrics": o.LoggingMetrics,
		"systemd": o.LoggingSystemd,
		"led":     o.LoggingLed,
	}
}
