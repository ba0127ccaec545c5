package dsp

import (
	"math"
	"testing"
)

func toneWindow(bin, n, rate int) SampleWindow {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * float64(bin) * float64(i) / float64(n))
	}
	return SampleWindow{SampleRate: rate, Samples: samples}
}

func TestSpectrumExtractor_PureTonePeaksAtBin(t *testing.T) {
	ex, err := NewSpectrumExtractor(WindowRectangular)
	if err != nil {
		t.Fatalf("NewSpectrumExtractor: %v", err)
	}

	const n, rate, bin = 1024, 8000, 37
	spec := ex.Spectrum(toneWindow(bin, n, rate))

	if len(spec.Magnitudes) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(spec.Magnitudes))
	}

	peak := 0
	for i, m := range spec.Magnitudes {
		if m > spec.Magnitudes[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Errorf("expected peak at bin %d, got bin %d", bin, peak)
	}

	// With a rectangular window an exact-bin tone leaks nowhere: every other
	// bin is numerically negligible next to the peak.
	for i, m := range spec.Magnitudes {
		if i == bin {
			continue
		}
		if m > spec.Magnitudes[bin]*1e-6 {
			t.Errorf("bin %d magnitude %g is not negligible against peak %g", i, m, spec.Magnitudes[bin])
		}
	}
}

func TestSpectrumExtractor_Deterministic(t *testing.T) {
	ex, err := NewSpectrumExtractor(WindowHann)
	if err != nil {
		t.Fatalf("NewSpectrumExtractor: %v", err)
	}

	w := toneWindow(5, 512, 8000)
	first := ex.Spectrum(w)
	second := ex.Spectrum(w)

	for i := range first.Magnitudes {
		if first.Magnitudes[i] != second.Magnitudes[i] {
			t.Fatalf("bin %d differs between identical extractions: %g != %g",
				i, first.Magnitudes[i], second.Magnitudes[i])
		}
	}
}

func TestSpectrumExtractor_NonPowerOfTwoWindow(t *testing.T) {
	ex, err := NewSpectrumExtractor(WindowHann)
	if err != nil {
		t.Fatalf("NewSpectrumExtractor: %v", err)
	}

	// 1000 samples: not a power of two, must transform without failing
	spec := ex.Spectrum(toneWindow(10, 1000, 8000))
	if len(spec.Magnitudes) != 500 {
		t.Errorf("expected 500 bins for a 1000-sample window, got %d", len(spec.Magnitudes))
	}
	if spec.BinWidth != 8.0 {
		t.Errorf("expected 8 Hz bin width, got %f", spec.BinWidth)
	}
	if got, want := spec.Nyquist(), 4000.0; got != want {
		t.Errorf("expected Nyquist %f, got %f", want, got)
	}
}

func TestSpectrumExtractor_UnknownWindowFunc(t *testing.T) {
	if _, err := NewSpectrumExtractor("kaiser-bessel-derived"); err == nil {
		t.Error("expected error for unknown window function")
	}
}

func TestSpectrumExtractor_EmptyWindow(t *testing.T) {
	ex, err := NewSpectrumExtractor("")
	if err != nil {
		t.Fatalf("NewSpectrumExtractor: %v", err)
	}
	if ex.WindowFunc() != WindowHann {
		t.Errorf("expected default window function %q, got %q", WindowHann, ex.WindowFunc())
	}

	spec := ex.Spectrum(SampleWindow{SampleRate: 8000})
	if len(spec.Magnitudes) != 0 {
		t.Errorf("empty window should produce an empty spectrum, got %d bins", len(spec.Magnitudes))
	}
}
