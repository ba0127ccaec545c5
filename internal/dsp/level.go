package dsp

import "math"

// DBFloor is the level reported for silent or empty windows. Computing
// log10(0) would otherwise produce -Inf and poison downstream aggregates.
const DBFloor = -90.0

// samplePeak is the reference amplitude for normalized samples.
const samplePeak = 1.0

// LevelExtractor computes one self-relative dB level per window. It is pure:
// the same window always yields the same level.
type LevelExtractor struct{}

// Level returns the mean absolute amplitude of the window expressed in dB
// relative to the peak sample value. Silent windows report DBFloor.
func (LevelExtractor) Level(w SampleWindow) LevelSample {
	if len(w.Samples) == 0 {
		return LevelSample{Time: w.Start, DB: DBFloor}
	}

	var sum float64
	for _, s := range w.Samples {
		sum += math.Abs(s)
	}

	mean := sum / float64(len(w.Samples))
	if mean == 0 {
		return LevelSample{Time: w.Start, DB: DBFloor}
	}

	db := 20.0 * math.Log10(mean/samplePeak)
	if db < DBFloor {
		db = DBFloor
	}
	return LevelSample{Time: w.Start, DB: db}
}
