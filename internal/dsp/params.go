package dsp

import (
	"fmt"
	"time"
)

const (
	ChangedPeriod Changed = iota
	ChangedWindow
)

// Changed identifies which of the two coupled controls the user just edited.
type Changed int

// Params couples the two analysis controls: how often a window is computed
// and how much audio each window covers. When Linked, editing one control
// recomputes the other to keep them equal; when unlinked, windows may overlap
// (window longer than period) or leave gaps (window shorter than period);
// both are valid.
type Params struct {
	UpdatePeriod time.Duration
	WindowSize   time.Duration
	Linked       bool
}

// Validate reports a configuration error for zero or negative durations.
func (p Params) Validate() error {
	if p.UpdatePeriod <= 0 {
		return fmt.Errorf("update period must be positive, got %s", p.UpdatePeriod)
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %s", p.WindowSize)
	}
	return nil
}

// UpdateRate returns the update cadence in Hz.
func (p Params) UpdateRate() float64 {
	if p.UpdatePeriod <= 0 {
		return 0
	}
	return float64(time.Second) / float64(p.UpdatePeriod)
}

// PeriodFromRate converts an update rate in Hz to a period.
func PeriodFromRate(hz float64) (time.Duration, error) {
	if hz <= 0 {
		return 0, fmt.Errorf("update rate must be positive, got %f", hz)
	}
	return time.Duration(float64(time.Second) / hz), nil
}

// DeriveParams recomputes the coupled control after one was edited. It is a
// pure function invoked explicitly on each change, not two-way data binding.
func DeriveParams(p Params, changed Changed) Params {
	if !p.Linked {
		return p
	}
	switch changed {
	case ChangedPeriod:
		p.WindowSize = p.UpdatePeriod
	case ChangedWindow:
		p.UpdatePeriod = p.WindowSize
	}
	return p
}
