package meter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dwmair/daymeter/internal/dsp"
)

// WithClock sets the time source used to decide bucket boundaries.
func WithClock(clock Clock) func(*Accumulator) {
	return func(a *Accumulator) {
		a.clock = clock
	}
}

// WithLogger sets the logger for stream anomaly reports.
func WithLogger(logger *slog.Logger) func(*Accumulator) {
	return func(a *Accumulator) {
		a.logger = logger.With(slog.String("component", "accumulator"))
	}
}

// Accumulator folds successive level/spectrum pairs into the currently open
// bucket and detects bucket-close boundaries. It exclusively owns the single
// open bucket; closed buckets are returned from Observe for the caller to
// hand to the day buffer.
//
// States: no bucket (before the first sample and after Reset) and open.
// Closing transitions open -> open: the next bucket starts at the closed
// bucket's end time, not at the arrival time, so buckets remain contiguous
// regardless of extractor call jitter.
type Accumulator struct {
	slot   time.Duration
	clock  Clock
	logger *slog.Logger

	open    *Bucket
	dropped uint64
}

// NewAccumulator creates an accumulator with the given bucket duration.
func NewAccumulator(slot time.Duration, options ...func(*Accumulator)) (*Accumulator, error) {
	if slot <= 0 {
		return nil, fmt.Errorf("bucket duration must be positive, got %s", slot)
	}

	a := Accumulator{
		slot:   slot,
		clock:  SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&a)
	}

	return &a, nil
}

// Slot returns the configured bucket duration.
func (a *Accumulator) Slot() time.Duration { return a.slot }

// Observe folds one level/spectrum pair into the open bucket, opening one if
// none exists. It returns the buckets closed by the passage of time, oldest
// first: normally zero or one, more when the clock jumped over whole slots
// (the skipped slots come back as empty buckets so the day stays contiguous).
func (a *Accumulator) Observe(level dsp.LevelSample, spec dsp.SpectrumSample) []Bucket {
	now := a.clock.Now()

	if a.open == nil {
		b := newBucket(now, a.slot)
		b.add(level, spec)
		a.open = &b
		return nil
	}

	if now.Before(a.open.Start) {
		// Backward clock jump. A bucket must never have negative duration:
		// keep the current boundaries and fold the sample into the open
		// bucket as if it arrived on time.
		a.dropped++
		a.logger.Warn("timestamp moved backward, clamping to open bucket",
			slog.Time("now", now),
			slog.Time("bucketStart", a.open.Start))
		a.open.add(level, spec)
		return nil
	}

	// A jump of more than a full day would flood the buffer with empty
	// buckets nobody can see. Re-anchor instead.
	if now.Sub(a.open.End) >= 24*time.Hour {
		a.logger.Warn("clock jumped past a full day, re-anchoring",
			slog.Time("now", now),
			slog.Time("bucketEnd", a.open.End))
		closed := []Bucket{a.open.close()}
		b := newBucket(now, a.slot)
		b.add(level, spec)
		a.open = &b
		return closed
	}

	var closed []Bucket
	for !now.Before(a.open.End) {
		closed = append(closed, a.open.close())
		b := newBucket(a.open.End, a.slot) // boundary-aligned, not arrival time
		a.open = &b
	}

	a.open.add(level, spec)
	return closed
}

// Open returns a copy of the currently open bucket, when one exists. The
// copy backs the live meter reading; mutating it has no effect.
func (a *Accumulator) Open() (Bucket, bool) {
	if a.open == nil {
		return Bucket{}, false
	}
	b := *a.open
	b.Spectrum = append([]float64(nil), a.open.Spectrum...)
	return b, true
}

// Anomalies returns the number of backward-timestamp samples clamped so far.
func (a *Accumulator) Anomalies() uint64 { return a.dropped }

// Reset discards the open, unflushed bucket and returns to the initial
// state. Called on an explicit stop or restart of monitoring; no partial
// bucket survives it.
func (a *Accumulator) Reset() {
	a.open = nil
}
