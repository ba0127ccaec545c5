package meter

import "sync"

// Absolutes tracks the session-wide minimum and maximum level, independent of
// the day buffer's bounded history. It survives scrolls and is cleared only
// by an explicit Reset from the user.
type Absolutes struct {
	mu    sync.Mutex
	min   float64
	max   float64
	valid bool
}

// Observe folds one level reading into the absolutes.
func (a *Absolutes) Observe(db float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.valid {
		a.min, a.max = db, db
		a.valid = true
		return
	}
	if db < a.min {
		a.min = db
	}
	if db > a.max {
		a.max = db
	}
}

// MinMax returns the absolute bounds; ok is false before the first reading
// and after a Reset.
func (a *Absolutes) MinMax() (min, max float64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.min, a.max, a.valid
}

// Reset clears the tracked bounds.
func (a *Absolutes) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.valid = false
}
