// Package pulse captures PCM audio through the PulseAudio `parec` tool.
package pulse

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/dwmair/daymeter/internal/audio"
)

const (
	Runtime = "parec"
	Source  = "pulse"
)

// sampleFormats maps a bit depth to the parec --format name.
var sampleFormats = map[int]string{
	16: "s16le",
	32: "s32le",
}

// Config is the `parec` capture configuration
type Config struct {
	Device     string `yaml:"device" json:"device"`             // --device source name (default: server default)
	SampleRate int    `yaml:"sampleRate" json:"sampleRate"`     // --rate sampling rate in Hz
	BitDepth   int    `yaml:"bitsPerSample" json:"bitsPerSample"` // --format (16 or 32 bit signed LE)
	Channels   int    `yaml:"channels" json:"channels"`         // --channels channel count (1 or 2)
}

func (c *Config) Validate() error {
	format := c.format()
	if err := format.Validate(); err != nil {
		return fmt.Errorf("pulse.Config: %w", err)
	}
	if _, ok := sampleFormats[c.BitDepth]; !ok {
		return fmt.Errorf("pulse.Config: no parec format for %d-bit samples", c.BitDepth)
	}
	return nil
}

// Args returns the command line arguments for `parec`
func (c *Config) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"--raw",
		"--format=" + sampleFormats[c.BitDepth],
		"--rate=" + strconv.Itoa(c.SampleRate),
		"--channels=" + strconv.Itoa(c.Channels),
	}
	if c.Device != "" {
		args = append(args, "--device="+c.Device)
	}
	return args, nil
}

func (c *Config) format() audio.Format {
	return audio.Format{
		SampleRate: c.SampleRate,
		BitDepth:   c.BitDepth,
		Channels:   c.Channels,
	}
}

// handler struct represents a PulseAudio capture handler
type handler struct {
	binPath string
	args    []string
	format  audio.Format
}

// New creates a new PulseAudio capture handler
func New(config *Config) (audio.Handler, error) {
	binPath, err := audio.FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("error finding runtime: %w", err)
	}

	args, err := config.Args()
	if err != nil {
		return nil, fmt.Errorf("error creating args: %w", err)
	}

	return &handler{binPath, args, config.format()}, nil
}

// Cmd returns an exec.Cmd for the PulseAudio capture handler
func (h handler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

func (h handler) Format() audio.Format {
	return h.format
}

func (h handler) Source() string {
	return Source
}
