// Package monitor runs the level meter pipeline: it pulls decoded PCM frames
// from a capture device, slices them into analysis windows on the configured
// cadence, folds each window's level and spectrum into time buckets and keeps
// the day buffer, session absolutes and live meter reading current.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dwmair/daymeter/internal/audio"
	"github.com/dwmair/daymeter/internal/dsp"
	"github.com/dwmair/daymeter/internal/meter"
	"github.com/dwmair/daymeter/internal/storage"
)

// frameQueueLen bounds how many decoded frames may sit between the capture
// goroutine and the pipeline loop before the device blocks.
const frameQueueLen = 16

// Reading is one live meter value. DB is the raw window level; Damped is the
// display value after descent smoothing.
type Reading struct {
	Time   time.Time
	DB     float64
	Damped float64
}

// Config carries the pipeline settings.
type Config struct {
	// Params couples the update cadence and analysis window size.
	Params dsp.Params

	// WindowFunc names the FFT taper. Empty selects the default.
	WindowFunc dsp.WindowFunc

	// Width is the day view width in buckets. Zero selects meter.DefaultWidth.
	// One bucket covers 24h divided by Width.
	Width int
}

// WithLogger sets the logger for the monitor
func WithLogger(logger *slog.Logger) func(*Monitor) {
	return func(m *Monitor) {
		m.logger = logger.With(slog.String("component", "monitor"))
	}
}

// WithStore enables persisting closed buckets to the given store.
func WithStore(store storage.Store) func(*Monitor) {
	return func(m *Monitor) {
		m.store = store
	}
}

// WithClock sets the time source. Defaults to the system clock.
func WithClock(clock meter.Clock) func(*Monitor) {
	return func(m *Monitor) {
		m.clock = clock
	}
}

// Monitor owns one capture device and the aggregation pipeline behind it.
// Run drives the pipeline until the context is cancelled or capture fails;
// the read accessors are safe to call from other goroutines while it runs.
type Monitor struct {
	device *audio.Device

	windower *dsp.Windower
	levels   dsp.LevelExtractor
	spectra  *dsp.SpectrumExtractor
	acc      *meter.Accumulator
	day      *meter.DayBuffer

	absolutes meter.Absolutes
	damper    *meter.Damper

	store     storage.Store
	sessionID int64

	clock  meter.Clock
	logger *slog.Logger

	paramsCh chan dsp.Params
	running  atomic.Bool
	degraded atomic.Uint64

	mu      sync.RWMutex
	params  dsp.Params
	live    Reading
	hasLive bool
}

// New creates a monitor for the given device.
func New(device *audio.Device, cfg Config, options ...func(*Monitor)) (*Monitor, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("validating analysis params: %w", err)
	}

	width := cfg.Width
	if width == 0 {
		width = meter.DefaultWidth
	}

	windower, err := dsp.NewWindower(device.Format().SampleRate, cfg.Params.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("creating windower: %w", err)
	}

	spectra, err := dsp.NewSpectrumExtractor(cfg.WindowFunc)
	if err != nil {
		return nil, fmt.Errorf("creating spectrum extractor: %w", err)
	}

	day, err := meter.NewDayBuffer(width)
	if err != nil {
		return nil, fmt.Errorf("creating day buffer: %w", err)
	}

	m := Monitor{
		device:   device,
		windower: windower,
		spectra:  spectra,
		day:      day,
		damper:   meter.NewDamper(0),
		clock:    meter.SystemClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		paramsCh: make(chan dsp.Params, 1),
		params:   cfg.Params,
	}

	for _, option := range options {
		option(&m)
	}

	// One bucket per day-view column.
	slot := 24 * time.Hour / time.Duration(width)
	if m.acc, err = meter.NewAccumulator(slot,
		meter.WithClock(m.clock),
		meter.WithLogger(m.logger),
	); err != nil {
		return nil, fmt.Errorf("creating accumulator: %w", err)
	}

	return &m, nil
}

// Run starts capture and drives the pipeline until ctx is cancelled or the
// capture process fails. The open bucket does not survive a stop: only fully
// closed buckets ever reach the day buffer or the store.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("monitor is already running")
	}
	defer m.running.Store(false)
	defer m.acc.Reset()

	if m.store != nil {
		id, err := m.store.CreateSession(ctx, m.device.Source(), m.device.DeviceID(), m.deviceConfig())
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		m.sessionID = id
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan audio.Frame, frameQueueLen)
	captureStopped, err := m.device.BeginCapture(ctx, frames)
	if err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}

	period := m.Params().UpdatePeriod
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	m.logger.Info("monitoring started",
		slog.String("source", m.device.Source()),
		slog.String("deviceID", m.device.DeviceID()),
		slog.Duration("updatePeriod", period))

	lastTick := m.clock.Now()
	for {
		select {
		case <-ctx.Done():
			m.device.Stop()
			<-captureStopped
			m.logger.Info("monitoring stopped")
			return nil

		case err := <-captureStopped:
			if err != nil {
				return fmt.Errorf("capture stopped: %w", err)
			}
			return nil

		case frame := <-frames:
			m.windower.Push(frame.Samples)

		case p := <-m.paramsCh:
			if err := m.windower.SetWindowSize(p.WindowSize); err != nil {
				m.logger.Error(fmt.Sprintf("applying window size: %s", err))
				continue
			}
			period = p.UpdatePeriod
			ticker.Reset(period)

			m.mu.Lock()
			m.params = p
			m.mu.Unlock()

			m.logger.Info("analysis params updated",
				slog.Duration("updatePeriod", p.UpdatePeriod),
				slog.Duration("windowSize", p.WindowSize))

		case <-ticker.C:
			now := m.clock.Now()
			// A late tick means the loop could not keep the cadence; the
			// ticker has already dropped the missed ones.
			if now.Sub(lastTick) > period*3/2 {
				m.degraded.Add(1)
			}
			lastTick = now
			m.observe(ctx, now)
		}
	}
}

// observe computes one analysis window and folds it into the aggregates.
func (m *Monitor) observe(ctx context.Context, now time.Time) {
	w := m.windower.Window(now)
	level := m.levels.Level(w)
	spec := m.spectra.Spectrum(w)

	closed := m.acc.Observe(level, spec)
	for _, b := range closed {
		if err := m.day.Append(b); err != nil {
			m.logger.Error(err.Error())
		}
	}
	if m.store != nil && len(closed) > 0 {
		if err := m.store.StoreBuckets(ctx, m.sessionID, closed); err != nil {
			m.logger.Error(fmt.Sprintf("persisting buckets: %s", err))
		}
	}

	m.absolutes.Observe(level.DB)
	damped := m.damper.Damp(level.DB)

	m.mu.Lock()
	m.live = Reading{Time: now, DB: level.DB, Damped: damped}
	m.hasLive = true
	m.mu.Unlock()
}

func (m *Monitor) deviceConfig() map[string]any {
	format := m.device.Format()
	params := m.Params()
	return map[string]any{
		"sampleRate":   format.SampleRate,
		"bitDepth":     format.BitDepth,
		"channels":     format.Channels,
		"updatePeriod": params.UpdatePeriod.String(),
		"windowSize":   params.WindowSize.String(),
		"windowFunc":   string(m.spectra.WindowFunc()),
		"width":        m.day.Width(),
	}
}

// SetParams applies a new update cadence and window size to the running
// pipeline.
func (m *Monitor) SetParams(p dsp.Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validating analysis params: %w", err)
	}
	if !m.running.Load() {
		return errors.New("monitor is not running")
	}

	select {
	case m.paramsCh <- p:
		return nil
	default:
		return errors.New("a params update is already pending")
	}
}

// Params returns the analysis params currently in effect.
func (m *Monitor) Params() dsp.Params {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params
}

// Live returns the most recent meter reading; ok is false before the first
// analysis window completes.
func (m *Monitor) Live() (Reading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live, m.hasLive
}

// Day returns the day buffer backing the raster tracks.
func (m *Monitor) Day() *meter.DayBuffer {
	return m.day
}

// Absolutes returns the session-wide level bounds; ok is false before the
// first reading and after ResetAbsolutes.
func (m *Monitor) Absolutes() (min, max float64, ok bool) {
	return m.absolutes.MinMax()
}

// ResetAbsolutes clears the session-wide level bounds.
func (m *Monitor) ResetAbsolutes() {
	m.absolutes.Reset()
}

// Degraded returns how many analysis ticks ran late because the pipeline
// could not keep the configured cadence.
func (m *Monitor) Degraded() uint64 {
	return m.degraded.Load()
}

// IsRunning reports whether the pipeline loop is active.
func (m *Monitor) IsRunning() bool {
	return m.running.Load()
}
