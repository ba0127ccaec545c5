package app

import (
	"image/color"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestSkyDisabledWithoutPosition(t *testing.T) {
	sky, err := NewSky(nil, nil)
	if err != nil {
		t.Fatalf("NewSky(nil, nil) error: %v", err)
	}
	if sky.Enabled() {
		t.Error("Enabled() = true without coordinates")
	}

	noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	if got := sky.ColorAt(noon); got != color.Color(skyNightColor) {
		t.Errorf("disabled sky ColorAt(noon) = %v, want night color %v", got, skyNightColor)
	}
}

func TestSkyInvalidPosition(t *testing.T) {
	if _, err := NewSky(floatPtr(95), floatPtr(0)); err == nil {
		t.Error("NewSky(95, 0) expected an error")
	}
}

func TestSkyDayAndNightAtEquator(t *testing.T) {
	sky, err := NewSky(floatPtr(0), floatPtr(0))
	if err != nil {
		t.Fatalf("NewSky error: %v", err)
	}
	if !sky.Enabled() {
		t.Fatal("Enabled() = false with coordinates set")
	}

	noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	if got := sky.ColorAt(noon); got != color.Color(skyDayColor) {
		t.Errorf("ColorAt(noon) = %v, want day color %v", got, skyDayColor)
	}

	midnight := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	if got := sky.ColorAt(midnight); got != color.Color(skyNightColor) {
		t.Errorf("ColorAt(midnight) = %v, want night color %v", got, skyNightColor)
	}
}

func TestSkyPolarDay(t *testing.T) {
	sky, err := NewSky(floatPtr(80), floatPtr(0))
	if err != nil {
		t.Fatalf("NewSky error: %v", err)
	}

	midsummer := time.Date(2024, 6, 21, 0, 30, 0, 0, time.UTC)
	if got := sky.ColorAt(midsummer); got != color.Color(skyDayColor) {
		t.Errorf("ColorAt(polar midsummer midnight) = %v, want day color %v", got, skyDayColor)
	}
}

func TestFraction(t *testing.T) {
	from := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	tests := []struct {
		name string
		t    time.Time
		want float64
	}{
		{"before window", from.Add(-time.Minute), 0},
		{"at start", from, 0},
		{"midway", from.Add(30 * time.Minute), 0.5},
		{"at end", to, 1},
		{"after window", to.Add(time.Minute), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fraction(from, to, tt.t); got != tt.want {
				t.Errorf("fraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendEndpoints(t *testing.T) {
	if got := blend(skyNightColor, skyDayColor, 0); got != color.Color(skyNightColor) {
		t.Errorf("blend(_, _, 0) = %v, want %v", got, skyNightColor)
	}
	if got := blend(skyNightColor, skyDayColor, 1); got != color.Color(skyDayColor) {
		t.Errorf("blend(_, _, 1) = %v, want %v", got, skyDayColor)
	}
}
