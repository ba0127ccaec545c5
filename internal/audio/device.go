package audio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// ReadErrorsThreshold defines the number of consecutive decode errors allowed
	ReadErrorsThreshold = 5

	// defaultChunkDuration is how much audio one Frame covers
	defaultChunkDuration = 50 * time.Millisecond
)

var (
	// ErrTooManyReadErrors is returned when consecutive stream decode errors exceed the threshold
	ErrTooManyReadErrors = errors.New("too many consecutive stream read errors")

	// ErrBrokenPipe is returned when there's an error reading from stdout or stderr
	ErrBrokenPipe = errors.New("broken pipe")
)

// WithLogger sets the logger for the device
func WithLogger(logger *slog.Logger) func(d *Device) {
	return func(d *Device) {
		d.logger = logger.With(
			slog.String("source", d.handler.Source()),
			slog.String("deviceID", d.deviceID),
		)
	}
}

// WithChunkDuration sets how much audio each emitted frame covers
func WithChunkDuration(dur time.Duration) func(d *Device) {
	return func(d *Device) {
		d.chunkDuration = dur
	}
}

// WithReadErrorsThreshold sets the threshold for consecutive stream read errors
func WithReadErrorsThreshold(threshold uint8) func(d *Device) {
	return func(d *Device) {
		d.readErrorsThreshold = threshold
	}
}

// Device runs a capture backend as a child process and turns its raw PCM
// stdout into decoded frames. It can be started (capture begins) and stopped.
type Device struct {
	deviceID string
	handler  Handler

	isCapturing atomic.Bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	chunkDuration       time.Duration
	readErrorsThreshold uint8
	logger              *slog.Logger
}

// NewDevice creates a new Device instance with a discard logger
func NewDevice(deviceID string, h Handler, options ...func(d *Device)) *Device {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	d := Device{
		deviceID:            deviceID,
		handler:             h,
		logger:              logger,
		chunkDuration:       defaultChunkDuration,
		readErrorsThreshold: ReadErrorsThreshold,
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// DeviceID returns the configured device identifier
func (d *Device) DeviceID() string { return d.deviceID }

// Source returns the backend name
func (d *Device) Source() string { return d.handler.Source() }

// Format returns the PCM format the backend captures
func (d *Device) Format() Format { return d.handler.Format() }

// BeginCapture starts the capture process and decodes its output into frames,
// sending them to the frames channel. The returned channel reports the final
// capture error, if any, once capture stops.
func (d *Device) BeginCapture(ctx context.Context, frames chan<- Frame) (<-chan error, error) {
	if d.isCapturing.Load() {
		return nil, fmt.Errorf("device is already capturing")
	}

	format := d.handler.Format()
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("validating capture format: %w", err)
	}

	d.isCapturing.Store(true)

	ctx, d.cancel = context.WithCancel(ctx)
	cmd := d.handler.Cmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.isCapturing.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		d.isCapturing.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		d.isCapturing.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error starting capture command: %w", err)
	}

	captureStopped := make(chan error)

	d.wg.Add(1)
	go func() {
		defer close(captureStopped)

		d.logger.Info("starting audio capture...")

		done := make(chan error, 3) // expects three results from three goroutines

		go d.handleStdout(ctx, stdout, format, frames, done)
		go d.handleStderr(stderr, done)
		go d.handleCmdWait(cmd, done)

		var errs []error
		for i := 0; i < cap(done); i++ {
			if err := <-done; err != nil {
				d.cancel() // cancel context on error
				d.logger.Error(err.Error())

				errs = append(errs, err)
			}
		}

		close(done)

		d.logger.Info("audio capture stopped")

		d.isCapturing.Store(false)
		d.wg.Done()

		if len(errs) > 0 {
			captureStopped <- errors.Join(errs...)
		}
	}()

	return captureStopped, nil
}

func (d *Device) Stop() {
	if !d.isCapturing.Load() {
		return // already stopped
	}

	d.cancel()
	d.wg.Wait()
	d.isCapturing.Store(false)
}

// IsCapturing returns true if the device is running
func (d *Device) IsCapturing() bool {
	return d.isCapturing.Load()
}

// handleStdout reads fixed-size PCM chunks from stdout, decodes and sends
// them to the frames channel.
func (d *Device) handleStdout(ctx context.Context, stdout io.Reader, format Format, frames chan<- Frame, done chan<- error) {
	var readErrors uint8

	chunkFrames := int(float64(format.SampleRate) * d.chunkDuration.Seconds())
	if chunkFrames < 1 {
		chunkFrames = 1
	}
	buf := make([]byte, chunkFrames*format.FrameBytes())

	for {
		if _, err := io.ReadFull(stdout, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, fs.ErrClosed) {
				done <- nil
				return
			}
			done <- fmt.Errorf("%w: error reading stdout: %w", ErrBrokenPipe, err)
			return
		}

		samples, err := DecodeFrame(buf, format)
		if err != nil {
			readErrors++
			d.logger.Warn(fmt.Sprintf("error decoding samples: %s", err.Error()))

			if readErrors >= d.readErrorsThreshold {
				done <- ErrTooManyReadErrors
				return
			}

			continue
		}

		readErrors = 0 // reset counter

		select {
		case frames <- Frame{Time: time.Now(), Samples: samples}:
		case <-ctx.Done():
			done <- nil
			return
		}
	}
}

// handleStderr reads from stderr and logs capture tool output.
func (d *Device) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		d.logger.Warn(fmt.Sprintf("%s >> %s", d.handler.Source(), line)) // simple logging here
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stderr: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}

// handleCmdWait waits for the command to exit and sends the error to the error channel
func (d *Device) handleCmdWait(cmd *exec.Cmd, done chan<- error) {
	if err := cmd.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		done <- fmt.Errorf("capture command exited with error: %w", err)
		return
	}

	done <- nil
}
