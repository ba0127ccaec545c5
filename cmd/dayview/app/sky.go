package app

import (
	"errors"
	"image/color"
	"time"

	"github.com/dwmair/daymeter/internal/sun"
)

var (
	skyDayColor   = color.RGBA{R: 0x87, G: 0xb5, B: 0xdc, A: 0xff}
	skyNightColor = color.RGBA{R: 0x10, G: 0x16, B: 0x2e, A: 0xff}
)

// Sky maps a wall-clock time to the level track's background color: day,
// night, or a blend through civil twilight. Without an observer position
// every column gets the night color.
type Sky struct {
	official *sun.Calculator
	civil    *sun.Calculator
}

// NewSky creates a sky shader for the given observer position. Both
// coordinates nil disables shading.
func NewSky(latitude, longitude *float64) (*Sky, error) {
	if latitude == nil || longitude == nil {
		return &Sky{}, nil
	}

	official, err := sun.NewCalculator(*latitude, *longitude)
	if err != nil {
		return nil, err
	}
	civil, err := sun.NewCalculator(*latitude, *longitude, sun.WithZenith(sun.ZenithCivil))
	if err != nil {
		return nil, err
	}

	return &Sky{official: official, civil: civil}, nil
}

// Enabled reports whether an observer position was configured.
func (s *Sky) Enabled() bool {
	return s.official != nil
}

// ColorAt returns the background color at time t. Dawn runs from civil dawn
// to sunrise, dusk from sunset to civil dusk.
func (s *Sky) ColorAt(t time.Time) color.Color {
	if s.official == nil {
		return skyNightColor
	}

	official, err := s.official.Times(t)
	switch {
	case errors.Is(err, sun.ErrPolarDay):
		return skyDayColor
	case errors.Is(err, sun.ErrPolarNight):
		// The sun may still cross the civil twilight boundary.
		if civil, cErr := s.civil.Times(t); cErr == nil &&
			!t.Before(civil.Sunrise) && t.Before(civil.Sunset) {
			return blend(skyNightColor, skyDayColor, 0.5)
		}
		return skyNightColor
	case err != nil:
		return skyNightColor
	}

	civil, err := s.civil.Times(t)
	if err != nil {
		// No civil twilight crossing; fall back to a hard day/night edge.
		civil = official
	}

	switch {
	case t.Before(civil.Sunrise) || !t.Before(civil.Sunset):
		return skyNightColor

	case !t.Before(official.Sunrise) && t.Before(official.Sunset):
		return skyDayColor

	case t.Before(official.Sunrise):
		// Dawn
		f := fraction(civil.Sunrise, official.Sunrise, t)
		return blend(skyNightColor, skyDayColor, f)

	default:
		// Dusk
		f := fraction(official.Sunset, civil.Sunset, t)
		return blend(skyDayColor, skyNightColor, f)
	}
}

func fraction(from, to time.Time, t time.Time) float64 {
	span := to.Sub(from)
	if span <= 0 {
		return 1
	}
	f := float64(t.Sub(from)) / float64(span)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func blend(a, b color.RGBA, f float64) color.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*f)
	}
	return color.RGBA{
		R: mix(a.R, b.R),
		G: mix(a.G, b.G),
		B: mix(a.B, b.B),
		A: 0xff,
	}
}
