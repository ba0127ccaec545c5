package monitor

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/dwmair/daymeter/internal/dsp"
	"github.com/dwmair/daymeter/internal/meter"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMonitor(t *testing.T, clock meter.Clock, slot time.Duration) *Monitor {
	t.Helper()

	windower, err := dsp.NewWindower(8000, 125*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWindower: %v", err)
	}
	spectra, err := dsp.NewSpectrumExtractor(dsp.WindowRectangular)
	if err != nil {
		t.Fatalf("NewSpectrumExtractor: %v", err)
	}
	day, err := meter.NewDayBuffer(meter.DefaultWidth)
	if err != nil {
		t.Fatalf("NewDayBuffer: %v", err)
	}
	acc, err := meter.NewAccumulator(slot, meter.WithClock(clock))
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}

	return &Monitor{
		windower: windower,
		spectra:  spectra,
		day:      day,
		acc:      acc,
		damper:   meter.NewDamper(0),
		clock:    clock,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		paramsCh: make(chan dsp.Params, 1),
		params: dsp.Params{
			UpdatePeriod: 125 * time.Millisecond,
			WindowSize:   125 * time.Millisecond,
		},
	}
}

func constSamples(amplitude float64, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude
	}
	return samples
}

func TestObserve_LiveReadingAndAbsolutes(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(t, clock, 3*time.Minute)

	// Fill the whole analysis window with a constant 0.5 amplitude:
	// 20*log10(0.5) is about -6.02 dB.
	m.windower.Push(constSamples(0.5, m.windower.WindowLen()))
	m.observe(context.Background(), clock.Now())

	live, ok := m.Live()
	if !ok {
		t.Fatal("expected a live reading after the first window")
	}
	want := 20 * math.Log10(0.5)
	if math.Abs(live.DB-want) > 1e-9 {
		t.Errorf("live DB = %f, want %f", live.DB, want)
	}
	if live.Damped != live.DB {
		t.Errorf("first reading must pass through undamped: %f vs %f", live.Damped, live.DB)
	}

	min, max, ok := m.Absolutes()
	if !ok {
		t.Fatal("expected absolutes after the first window")
	}
	if min != max || math.Abs(min-want) > 1e-9 {
		t.Errorf("absolutes = %f/%f, want both %f", min, max, want)
	}
}

func TestObserve_ClosesBucketsIntoDayBuffer(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	slot := 3 * time.Minute
	m := newTestMonitor(t, clock, slot)

	m.windower.Push(constSamples(0.25, m.windower.WindowLen()))
	m.observe(context.Background(), clock.Now())

	if m.Day().Len() != 0 {
		t.Fatalf("day buffer len = %d before the slot elapsed, want 0", m.Day().Len())
	}

	clock.advance(slot)
	m.observe(context.Background(), clock.Now())

	if m.Day().Len() != 1 {
		t.Fatalf("day buffer len = %d after the slot elapsed, want 1", m.Day().Len())
	}

	buckets := m.Day().Buckets()
	if !buckets[0].HasData() {
		t.Error("first closed bucket must carry the observed window")
	}
	if !buckets[0].Closed {
		t.Error("buckets in the day buffer must be closed")
	}
}

func TestObserve_DampsFallingLevel(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(t, clock, 3*time.Minute)

	m.windower.Push(constSamples(0.9, m.windower.WindowLen()))
	m.observe(context.Background(), clock.Now())

	loud, _ := m.Live()

	// Overwrite the window with silence. The raw level collapses to the
	// floor; the damped value descends gradually.
	clock.advance(125 * time.Millisecond)
	m.windower.Push(constSamples(0, m.windower.WindowLen()))
	m.observe(context.Background(), clock.Now())

	quiet, _ := m.Live()
	if quiet.DB != dsp.DBFloor {
		t.Errorf("raw level = %f, want floor %f", quiet.DB, dsp.DBFloor)
	}
	if quiet.Damped <= quiet.DB {
		t.Errorf("damped level %f must sit above the raw floor %f", quiet.Damped, quiet.DB)
	}
	if quiet.Damped >= loud.DB {
		t.Errorf("damped level %f must descend below the loud reading %f", quiet.Damped, loud.DB)
	}
}

func TestSetParams_NotRunning(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(t, clock, 3*time.Minute)

	p := dsp.Params{UpdatePeriod: time.Second, WindowSize: time.Second}
	if err := m.SetParams(p); err == nil {
		t.Error("expected error when the monitor is not running")
	}

	if err := m.SetParams(dsp.Params{}); err == nil {
		t.Error("expected validation error for zero params")
	}
}

func TestResetAbsolutes(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(t, clock, 3*time.Minute)

	m.windower.Push(constSamples(0.5, m.windower.WindowLen()))
	m.observe(context.Background(), clock.Now())

	if _, _, ok := m.Absolutes(); !ok {
		t.Fatal("expected absolutes after a window")
	}

	m.ResetAbsolutes()
	if _, _, ok := m.Absolutes(); ok {
		t.Error("absolutes must be cleared after reset")
	}
}
