package meter

import (
	"time"

	"github.com/dwmair/daymeter/internal/dsp"
)

// Bucket is the accumulation unit for one pixel column of the day view.
// While open it carries a running level min/max and a running spectrum sum;
// Close converts the sum to a mean. A closed bucket is never mutated again.
//
// Count == 0 marks an empty (no-data) bucket: a slot the clock passed over
// without any extractor output. Empty buckets are kept, not skipped, so gaps
// in the stream stay representable. MinDB, MaxDB and Spectrum are meaningless
// for them.
type Bucket struct {
	Start time.Time
	End   time.Time

	MinDB float64
	MaxDB float64

	// Spectrum is the running bin-wise sum while the bucket is open and the
	// mean spectrum once closed.
	Spectrum []float64
	BinWidth float64

	Count  int
	Closed bool
}

func newBucket(start time.Time, slot time.Duration) Bucket {
	return Bucket{Start: start, End: start.Add(slot)}
}

// HasData reports whether any window landed in this bucket.
func (b Bucket) HasData() bool { return b.Count > 0 }

func (b *Bucket) add(level dsp.LevelSample, spec dsp.SpectrumSample) {
	if b.Count == 0 {
		b.MinDB = level.DB
		b.MaxDB = level.DB
		b.Spectrum = append([]float64(nil), spec.Magnitudes...)
		b.BinWidth = spec.BinWidth
		b.Count = 1
		return
	}

	if level.DB < b.MinDB {
		b.MinDB = level.DB
	}
	if level.DB > b.MaxDB {
		b.MaxDB = level.DB
	}

	// Spectra from one extractor share a length; a mid-bucket format change
	// would arrive via a monitor restart, which resets the accumulator.
	for i := range b.Spectrum {
		if i < len(spec.Magnitudes) {
			b.Spectrum[i] += spec.Magnitudes[i]
		}
	}
	b.Count++
}

func (b *Bucket) close() Bucket {
	if b.Count > 0 {
		n := float64(b.Count)
		for i := range b.Spectrum {
			b.Spectrum[i] /= n
		}
	}
	b.Closed = true
	return *b
}
