package dsp

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	WindowRectangular WindowFunc = "rectangular"
	WindowHann        WindowFunc = "hann"
	WindowHamming     WindowFunc = "hamming"
	WindowBlackman    WindowFunc = "blackman"
	WindowBartlett    WindowFunc = "bartlett"
	WindowFlatTop     WindowFunc = "flattop"
)

// WindowFunc names the tapering function applied to every window before the
// transform. One extractor uses one function for its whole lifetime so that
// bucket-mean spectra stay comparable.
type WindowFunc string

var windowFuncs = map[WindowFunc]func(int) []float64{
	WindowRectangular: window.Rectangular,
	WindowHann:        window.Hann,
	WindowHamming:     window.Hamming,
	WindowBlackman:    window.Blackman,
	WindowBartlett:    window.Bartlett,
	WindowFlatTop:     window.FlatTop,
}

// SpectrumExtractor computes one linear-frequency magnitude spectrum per
// window. The transform accepts any window length; there is no power-of-two
// restriction.
type SpectrumExtractor struct {
	fn     WindowFunc
	coeffs []float64 // cached taper, rebuilt when the window length changes
}

// NewSpectrumExtractor returns an extractor using the named window function.
func NewSpectrumExtractor(fn WindowFunc) (*SpectrumExtractor, error) {
	if fn == "" {
		fn = WindowHann
	}
	if _, ok := windowFuncs[fn]; !ok {
		return nil, fmt.Errorf("unknown window function %q", fn)
	}
	return &SpectrumExtractor{fn: fn}, nil
}

// WindowFunc returns the tapering function the extractor was built with.
func (e *SpectrumExtractor) WindowFunc() WindowFunc {
	return e.fn
}

// Spectrum transforms one window into magnitudes for bins [0, N/2), DC first.
// Deterministic given the window.
func (e *SpectrumExtractor) Spectrum(w SampleWindow) SpectrumSample {
	n := len(w.Samples)
	if n == 0 || w.SampleRate <= 0 {
		return SpectrumSample{Time: w.Start}
	}

	if len(e.coeffs) != n {
		e.coeffs = windowFuncs[e.fn](n)
	}

	tapered := make([]float64, n)
	for i, s := range w.Samples {
		tapered[i] = s * e.coeffs[i]
	}

	bins := fft.FFTReal(tapered)

	half := n / 2
	mags := make([]float64, half)
	for i := range mags {
		mags[i] = cmplx.Abs(bins[i])
	}

	return SpectrumSample{
		Time:       w.Start,
		BinWidth:   float64(w.SampleRate) / float64(n),
		Magnitudes: mags,
	}
}
