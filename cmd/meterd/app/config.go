package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dwmair/daymeter/internal/audio/alsa"
	"github.com/dwmair/daymeter/internal/audio/pulse"
	"github.com/dwmair/daymeter/internal/dsp"
	"github.com/dwmair/daymeter/internal/meter"
)

const (
	BackendALSA  Backend = "alsa"
	BackendPulse Backend = "pulse"
)

// Backend selects the capture tool behind the device.
type Backend string

const defaultUpdateRate = 8.0 // windows per second

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Device   DeviceConfig  `yaml:"device"`
	Meter    MeterConfig   `yaml:"meter"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// SlogLevel parses the configured log level. An empty value means Info.
func (s Settings) SlogLevel() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}

// DeviceConfig represents the capture device configuration. Exactly one
// backend section matching Backend must be present.
type DeviceConfig struct {
	Name    string        `yaml:"name"`
	Backend Backend       `yaml:"backend"`
	ALSA    *alsa.Config  `yaml:"alsa"`
	Pulse   *pulse.Config `yaml:"pulse"`
}

func (c *DeviceConfig) Validate() error {
	switch c.Backend {
	case BackendALSA:
		if c.ALSA == nil {
			return fmt.Errorf("backend %q requires an alsa section", c.Backend)
		}
	case BackendPulse:
		if c.Pulse == nil {
			return fmt.Errorf("backend %q requires a pulse section", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// MeterConfig represents the analysis settings
type MeterConfig struct {
	// UpdateRate is how many analysis windows are computed per second.
	UpdateRate float64 `yaml:"updateRate"`

	// WindowSize is how much audio each window covers, as a duration string.
	// Empty follows the update period.
	WindowSize string `yaml:"windowSize"`

	// Linked couples the window size to the update period.
	Linked bool `yaml:"linked"`

	// WindowFunc names the FFT taper. Empty selects the default.
	WindowFunc string `yaml:"windowFunc"`

	// Width is the day view width in buckets. Zero selects the default.
	Width int `yaml:"width"`
}

// Params converts the meter section into analysis params.
func (c MeterConfig) Params() (dsp.Params, error) {
	rate := c.UpdateRate
	if rate == 0 {
		rate = defaultUpdateRate
	}
	period, err := dsp.PeriodFromRate(rate)
	if err != nil {
		return dsp.Params{}, fmt.Errorf("parsing update rate: %w", err)
	}

	window := period
	if c.WindowSize != "" {
		if window, err = time.ParseDuration(c.WindowSize); err != nil {
			return dsp.Params{}, fmt.Errorf("parsing window size: %w", err)
		}
	}

	p := dsp.Params{
		UpdatePeriod: period,
		WindowSize:   window,
		Linked:       c.Linked,
	}
	if p.Linked {
		p = dsp.DeriveParams(p, dsp.ChangedPeriod)
	}
	if err = p.Validate(); err != nil {
		return dsp.Params{}, err
	}
	return p, nil
}

// StorageConfig represents storage settings
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads and validates the YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if _, err = config.Settings.SlogLevel(); err != nil {
		return nil, err
	}
	if err = config.Device.Validate(); err != nil {
		return nil, fmt.Errorf("validating device: %w", err)
	}
	if _, err = config.Meter.Params(); err != nil {
		return nil, fmt.Errorf("validating meter: %w", err)
	}
	if config.Meter.Width < 0 {
		return nil, fmt.Errorf("validating meter: width must not be negative, got %d", config.Meter.Width)
	}
	if config.Meter.Width == 0 {
		config.Meter.Width = meter.DefaultWidth
	}

	return &config, nil
}
