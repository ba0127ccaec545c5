// Package alsa captures PCM audio through the ALSA `arecord` tool.
package alsa

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/dwmair/daymeter/internal/audio"
)

const (
	Runtime = "arecord"
	Source  = "alsa"
)

// sampleFormats maps a bit depth to the arecord -f format name.
var sampleFormats = map[int]string{
	8:  "S8",
	16: "S16_LE",
	32: "S32_LE",
}

// Config is the `arecord` capture configuration
type Config struct {
	Device     string `yaml:"device" json:"device"`             // -D pcm name (default: "default")
	SampleRate int    `yaml:"sampleRate" json:"sampleRate"`     // -r sampling rate in Hz
	BitDepth   int    `yaml:"bitsPerSample" json:"bitsPerSample"` // -f sample format (8, 16 or 32 bit signed LE)
	Channels   int    `yaml:"channels" json:"channels"`         // -c channel count (1 or 2)
}

func (c *Config) Validate() error {
	format := c.format()
	if err := format.Validate(); err != nil {
		return fmt.Errorf("alsa.Config: %w", err)
	}
	if _, ok := sampleFormats[c.BitDepth]; !ok {
		return fmt.Errorf("alsa.Config: no arecord format for %d-bit samples", c.BitDepth)
	}
	return nil
}

// Args returns the command line arguments for `arecord`
func (c *Config) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-q",
		"-t", "raw",
		"-f", sampleFormats[c.BitDepth],
		"-r", strconv.Itoa(c.SampleRate),
		"-c", strconv.Itoa(c.Channels),
	}
	if c.Device != "" {
		args = append(args, "-D", c.Device)
	}
	return append(args, "-"), nil
}

func (c *Config) format() audio.Format {
	return audio.Format{
		SampleRate: c.SampleRate,
		BitDepth:   c.BitDepth,
		Channels:   c.Channels,
	}
}

// handler struct represents an ALSA capture handler
type handler struct {
	binPath string
	args    []string
	format  audio.Format
}

// New creates a new ALSA capture handler
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

// Cmd returns an exec.Cmd for the ALSA capture handler
func (h handler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

func (h handler) Format() audio.Format {
	return h.format
}

func (h handler) Source() string {
	return Source
}
