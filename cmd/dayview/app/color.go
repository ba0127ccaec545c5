package app

import (
	"image/color"
	"math"
)

const (
	ClassicTheme   ColorTheme = "classic"
	GrayscaleTheme ColorTheme = "grayscale"
	ThermalTheme   ColorTheme = "thermal"
)

// DefaultTheme is used when no theme is selected on the command line.
const DefaultTheme = ClassicTheme

type ColorTheme string

// NoDataColor marks spectrum columns of empty buckets.
var NoDataColor = color.Black

const defaultColorMapSize = 256

// ColorMapper maps normalized spectrum magnitudes [0, 1] onto a pre-computed
// gradient.
type ColorMapper struct {
	colorMap []color.Color
	size     int
}

func NewColorMapper(theme ColorTheme, size int) *ColorMapper {
	if size <= 1 {
		size = defaultColorMapSize
	}

	fn := colorThemes[theme]
	if fn == nil {
		fn = colorThemes[DefaultTheme]
	}

	cm := &ColorMapper{
		colorMap: make([]color.Color, size),
		size:     size,
	}
	for i := 0; i < size; i++ {
		cm.colorMap[i] = fn(float64(i) / float64(size-1))
	}
	return cm
}

// GetColor returns the gradient color for a normalized magnitude.
func (cm *ColorMapper) GetColor(normalized float64) color.Color {
	normalized = math.Max(0, math.Min(1, normalized))

	index := int(normalized * float64(cm.size-1))
	if index < 0 {
		index = 0
	} else if index >= cm.size {
		index = cm.size - 1
	}

	return cm.colorMap[index]
}

// HSV represents a color in HSV color space
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// RGB converts HSV color space to RGB
// H: [0-360], S: [0-1], V: [0-1]
func (hsv HSV) RGB() color.Color {
	h := hsv.H
	s := hsv.S
	v := hsv.V

	if s <= 0.0 {
		rgb := uint8(v * 255)
		return color.RGBA{R: rgb, G: rgb, B: rgb, A: 0xff}
	}

	// Normalize hue to [0-6]
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64

	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}

var colorThemes = map[ColorTheme]func(float64) color.Color{
	ClassicTheme: func(magnitude float64) color.Color {
		// Blue -> Red
		hsv := HSV{
			H: 240 - (magnitude * 240),
			S: 0.9 + (magnitude * 0.1),
			V: math.Pow(magnitude, 0.7),
		}
		return hsv.RGB()
	},

	GrayscaleTheme: func(magnitude float64) color.Color {
		// Black -> White
		v := math.Pow(magnitude, 0.7) * 255
		return color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 0xff}
	},

	ThermalTheme: func(magnitude float64) color.Color {
		// Black -> Red -> Yellow -> White
		if magnitude < 0.33 {
			p := magnitude * 3
			return color.RGBA{R: uint8(p * 255), A: 0xff}
		} else if magnitude < 0.66 {
			p := (magnitude - 0.33) * 3
			return color.RGBA{R: 255, G: uint8(p * 255), A: 0xff}
		}
		p := math.Min((magnitude-0.66)*3, 1)
		v := uint8(p * 255)
		return color.RGBA{R: 255, G: 255, B: v, A: 0xff}
	},
}
