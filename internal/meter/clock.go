package meter

import "time"

// Clock supplies wall-clock time to the accumulator. The scheduling input is
// injected rather than read from ambient global state so tests can drive
// bucket boundaries deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
