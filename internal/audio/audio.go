package audio

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Format is the PCM sampling configuration requested from a capture backend.
// Signed little-endian integer samples.
type Format struct {
	SampleRate int `yaml:"sampleRate"`
	BitDepth   int `yaml:"bitsPerSample"`
	Channels   int `yaml:"channels"`
}

// Validate reports a configuration error for parameters no backend can
// deliver. Individual backends may reject more.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	switch f.BitDepth {
	case 8, 16, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d (want 8, 16 or 32)", f.BitDepth)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("unsupported channel count %d (want 1 or 2)", f.Channels)
	}
	return nil
}

// FrameBytes returns the byte width of one multi-channel sample frame.
func (f Format) FrameBytes() int {
	return f.BitDepth / 8 * f.Channels
}

// Frame is one chunk of captured audio: mono samples normalized to [-1, 1],
// stamped with the wall-clock time the chunk was read.
type Frame struct {
	Time    time.Time
	Samples []float64
}

// Handler describes a capture backend invoked as a child process that emits
// raw PCM on stdout. Backends validate their configuration at construction;
// device or format combinations the tool itself rejects surface through the
// process exiting, never as corrupt data.
type Handler interface {
	// Cmd builds the capture command. Called once per capture run.
	Cmd(ctx context.Context) *exec.Cmd

	// Format returns the PCM format the command was asked to produce.
	Format() Format

	// Source identifies the backend, e.g. "alsa" or "pulse".
	Source() string
}
