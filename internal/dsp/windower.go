package dsp

import (
	"fmt"
	"sync"
	"time"
)

// Windower slices the continuous, possibly irregular capture stream into
// fixed-length analysis windows. Frames of any size are pushed as they
// arrive; each call to Window snapshots the most recent windowLen samples.
// The ring is pre-seeded with silence, so early windows are zero-padded at
// the head rather than short.
//
// The update cadence is owned by the caller (the monitor ticker); calling
// Window more often than one window duration produces overlapping windows,
// less often leaves gaps. Both are valid per the linked/unlinked controls.
type Windower struct {
	sampleRate int

	mu        sync.Mutex
	ring      []float64
	w         int // next write index
	windowLen int
}

// NewWindower validates the configuration and builds a windower producing
// windows of the given duration.
func NewWindower(sampleRate int, windowSize time.Duration) (*Windower, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	n := samplesIn(sampleRate, windowSize)
	if n <= 0 {
		return nil, fmt.Errorf("window size %s resolves to %d samples", windowSize, n)
	}
	return &Windower{
		sampleRate: sampleRate,
		ring:       make([]float64, n),
		windowLen:  n,
	}, nil
}

func samplesIn(rate int, d time.Duration) int {
	return int(float64(rate) * d.Seconds())
}

// SampleRate returns the configured capture rate.
func (wd *Windower) SampleRate() int {
	return wd.sampleRate
}

// WindowLen returns the number of samples per analysis window.
func (wd *Windower) WindowLen() int {
	wd.mu.Lock()
	defer wd.mu.Unlock()
	return wd.windowLen
}

// SetWindowSize resizes the analysis window, keeping as much recent audio as
// fits the new length.
func (wd *Windower) SetWindowSize(windowSize time.Duration) error {
	n := samplesIn(wd.sampleRate, windowSize)
	if n <= 0 {
		return fmt.Errorf("window size %s resolves to %d samples", windowSize, n)
	}

	wd.mu.Lock()
	defer wd.mu.Unlock()

	if n == wd.windowLen {
		return nil
	}

	recent := wd.snapshotLocked()
	wd.ring = make([]float64, n)
	wd.windowLen = n
	wd.w = 0
	if len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	wd.pushLocked(recent)
	return nil
}

// Push appends captured samples to the stream.
func (wd *Windower) Push(samples []float64) {
	wd.mu.Lock()
	defer wd.mu.Unlock()
	wd.pushLocked(samples)
}

func (wd *Windower) pushLocked(samples []float64) {
	for _, s := range samples {
		wd.ring[wd.w] = s
		wd.w++
		if wd.w == len(wd.ring) {
			wd.w = 0
		}
	}
}

// Window produces the analysis window ending now. The returned window owns
// its samples; later pushes do not mutate it.
func (wd *Windower) Window(now time.Time) SampleWindow {
	wd.mu.Lock()
	samples := wd.snapshotLocked()
	wd.mu.Unlock()

	return SampleWindow{
		Start:      now,
		SampleRate: wd.sampleRate,
		Samples:    samples,
	}
}

func (wd *Windower) snapshotLocked() []float64 {
	out := make([]float64, wd.windowLen)
	n := copy(out, wd.ring[wd.w:])
	copy(out[n:], wd.ring[:wd.w])
	return out
}
