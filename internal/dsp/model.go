package dsp

import "time"

// SampleWindow is one fixed-length slice of the capture stream handed to the
// extractors. Samples are mono, normalized to [-1, 1]. A window is immutable
// once produced; extractors must not modify it.
type SampleWindow struct {
	Start      time.Time // wall-clock time the newest sample was captured
	SampleRate int       // samples per second
	Samples    []float64
}

// Duration returns the length of audio covered by the window.
func (w SampleWindow) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// LevelSample is a single self-relative dB measurement for one window.
// It is not an SPL: the reference is the peak representable sample value,
// so values are only comparable within one session and device.
type LevelSample struct {
	Time time.Time
	DB   float64
}

// SpectrumSample is a linear-frequency magnitude spectrum for one window.
// Magnitudes[0] is the DC bin, the last bin sits just below Nyquist, and
// adjacent bins are BinWidth Hz apart.
type SpectrumSample struct {
	Time       time.Time
	BinWidth   float64
	Magnitudes []float64
}

// Nyquist returns the highest frequency representable in the spectrum.
func (s SpectrumSample) Nyquist() float64 {
	return s.BinWidth * float64(len(s.Magnitudes))
}
