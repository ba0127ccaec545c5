package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/dwmair/daymeter/internal/meter"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkLength = 5

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	// Track layout
	levelTrackHeight    = 160
	spectrumTrackHeight = 160
	trackGap            = 20

	defaultTimeFormat     = "15:04"
	defaultDatetimeFormat = time.DateTime

	// levelPadDB widens the automatic level bounds so bars never touch the
	// track edges.
	levelPadDB = 3.0
)

var levelBarColor = color.RGBA{R: 0x2e, G: 0xc2, B: 0x6e, A: 0xff}

// LevelBounds is the dB range the level track is plotted against.
type LevelBounds struct {
	Min float64
	Max float64
}

// BorderConfig defines the sizes of white space around the tracks
type BorderConfig struct {
	Top    int // Space for the info bar
	Left   int // Space for level and frequency scales
	Bottom int // Space for the time scale
	Right  int // Right padding
}

// RenderConfig holds all configuration options for the day view
type RenderConfig struct {
	// Time display configuration
	TimeFormat     string         // Format string for time display (e.g. "15:04")
	DatetimeFormat string         // Format string for date/time display
	Location       *time.Location // Timezone for time display

	// Visual configuration
	FontSize float64    // Font size in points
	FontPath string     // TTF font used for annotations
	Theme    ColorTheme // Color scheme for spectrum magnitudes
	Sky      *Sky       // Day/night shading for the level track

	// Manual level bounds; nil derives them from the data
	MinLevel *float64
	MaxLevel *float64

	NoAnnotations bool

	// Border configuration
	Borders BorderConfig
}

// DayRenderer draws the two raster tracks of one monitored day: the min/max
// level track above the mean spectrum track, sharing one horizontal time axis.
type DayRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewDayRenderer creates a new day view renderer with the given configuration
func NewDayRenderer(config RenderConfig) (*DayRenderer, error) {
	// Set defaults for zero values
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.Sky == nil {
		config.Sky = &Sky{}
	}
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}

	return &DayRenderer{
		colorMap: NewColorMapper(config.Theme, 0),
		config:   config,
	}, nil
}

// Render creates an image of the day's tracks with annotations. One bucket
// maps to one pixel column.
func (r *DayRenderer) Render(levels meter.MinMaxTrack, spectra meter.SpectrumTrack) (*image.RGBA, error) {
	if len(levels) == 0 {
		return nil, errors.New("no buckets to render")
	}
	if len(spectra) != len(levels) {
		return nil, fmt.Errorf("track length mismatch: %d level columns, %d spectrum columns", len(levels), len(spectra))
	}

	width := len(levels)
	fullWidth := width + r.config.Borders.Left + r.config.Borders.Right
	fullHeight := r.config.Borders.Top + levelTrackHeight + trackGap + spectrumTrackHeight + r.config.Borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	levelArea := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Borders.Left+width,
		r.config.Borders.Top+levelTrackHeight,
	)
	spectrumArea := image.Rect(
		r.config.Borders.Left,
		levelArea.Max.Y+trackGap,
		r.config.Borders.Left+width,
		levelArea.Max.Y+trackGap+spectrumTrackHeight,
	)

	bounds := r.levelBounds(levels)

	r.renderLevels(img, levelArea, levels, bounds)
	nyquist := r.renderSpectra(img, spectrumArea, spectra)

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			TimeFormat:     r.config.TimeFormat,
			DatetimeFormat: r.config.DatetimeFormat,
			Location:       r.config.Location,
			FontSize:       r.config.FontSize,
			FontPath:       r.config.FontPath,
			Borders:        r.config.Borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, levels, bounds, nyquist, levelArea, spectrumArea); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	return img, nil
}

// levelBounds derives the plotted dB range from the data, widened by
// levelPadDB, with manual overrides taking precedence.
func (r *DayRenderer) levelBounds(levels meter.MinMaxTrack) LevelBounds {
	bounds := LevelBounds{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, p := range levels {
		if !p.HasData {
			continue
		}
		bounds.Min = math.Min(bounds.Min, p.MinDB)
		bounds.Max = math.Max(bounds.Max, p.MaxDB)
	}

	if math.IsInf(bounds.Min, 1) {
		// Nothing but empty buckets
		bounds = LevelBounds{Min: -90, Max: 0}
	} else {
		bounds.Min = math.Max(bounds.Min-levelPadDB, -90)
		bounds.Max = math.Min(bounds.Max+levelPadDB, 0)
	}

	if r.config.MinLevel != nil {
		bounds.Min = *r.config.MinLevel
	}
	if r.config.MaxLevel != nil {
		bounds.Max = *r.config.MaxLevel
	}
	if bounds.Max <= bounds.Min {
		bounds.Max = bounds.Min + 1
	}
	return bounds
}

// renderLevels paints the sky background and one min..max bar per column.
// Empty buckets show bare sky.
func (r *DayRenderer) renderLevels(img *image.RGBA, area image.Rectangle, levels meter.MinMaxTrack, bounds LevelBounds) {
	for x, p := range levels {
		imgX := area.Min.X + x

		mid := p.Start.Add(p.End.Sub(p.Start) / 2).In(r.config.Location)
		background := r.config.Sky.ColorAt(mid)
		for y := area.Min.Y; y < area.Max.Y; y++ {
			img.Set(imgX, y, background)
		}

		if !p.HasData {
			continue
		}

		top := yForDB(p.MaxDB, bounds, area)
		bottom := yForDB(p.MinDB, bounds, area)
		for y := top; y <= bottom; y++ {
			img.Set(imgX, y, levelBarColor)
		}
	}
}

// yForDB maps a dB value to a pixel row within the level track, louder up.
func yForDB(db float64, bounds LevelBounds, area image.Rectangle) int {
	h := area.Dy()
	norm := (db - bounds.Min) / (bounds.Max - bounds.Min)
	y := area.Max.Y - 1 - int(norm*float64(h-1))
	if y < area.Min.Y {
		y = area.Min.Y
	}
	if y > area.Max.Y-1 {
		y = area.Max.Y - 1
	}
	return y
}

// renderSpectra paints one mean spectrum per column, DC at the bottom,
// Nyquist at the top, colored by magnitude relative to the track maximum.
// Returns the Nyquist frequency for the scale annotations.
func (r *DayRenderer) renderSpectra(img *image.RGBA, area image.Rectangle, spectra meter.SpectrumTrack) float64 {
	var maxMag, nyquist float64
	for _, col := range spectra {
		for _, m := range col.Magnitudes {
			maxMag = math.Max(maxMag, m)
		}
		if n := col.BinWidth * float64(len(col.Magnitudes)); n > nyquist {
			nyquist = n
		}
	}

	h := area.Dy()
	for x, col := range spectra {
		imgX := area.Min.X + x

		if col.Magnitudes == nil {
			for y := area.Min.Y; y < area.Max.Y; y++ {
				img.Set(imgX, y, NoDataColor)
			}
			continue
		}

		for row := 0; row < h; row++ {
			// Rows run bottom-up through the bins
			bin := (h - 1 - row) * len(col.Magnitudes) / h
			var norm float64
			if maxMag > 0 {
				norm = col.Magnitudes[bin] / maxMag
			}
			img.Set(imgX, area.Min.Y+row, r.colorMap.GetColor(norm))
		}
	}

	return nyquist
}

// Internal annotator implementation
type annotatorConfig struct {
	TimeFormat     string
	DatetimeFormat string
	Location       *time.Location
	FontSize       float64
	FontPath       string
	Borders        BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	if config.FontPath == "" {
		config.FontPath = defaultFontPath
	}
	fontBytes, err := os.ReadFile(config.FontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", config.FontPath, err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, levels meter.MinMaxTrack, bounds LevelBounds, nyquist float64, levelArea, spectrumArea image.Rectangle) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawTimeScale(img, levels, levelArea, spectrumArea); err != nil {
		return fmt.Errorf("drawing time scale: %w", err)
	}
	if err := a.drawLevelScale(img, bounds, levelArea); err != nil {
		return fmt.Errorf("drawing level scale: %w", err)
	}
	if err := a.drawFrequencyScale(img, nyquist, spectrumArea); err != nil {
		return fmt.Errorf("drawing frequency scale: %w", err)
	}
	if err := a.drawInfoBar(img, levels, bounds, nyquist, spectrumArea); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

// drawTimeScale labels the shared horizontal axis below the spectrum track.
func (a *annotator) drawTimeScale(img *image.RGBA, levels meter.MinMaxTrack, levelArea, spectrumArea image.Rectangle) error {
	start := levels[0].Start
	end := levels[len(levels)-1].End
	duration := end.Sub(start)
	if duration <= 0 {
		return nil
	}
	timeStep := calculateNiceTimeStep(duration)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := spectrumArea.Max.Y + tickMarkLength + fontHeight

	// First tick on the step boundary at or after the track start
	first := start.In(a.config.Location).Truncate(timeStep)
	if first.Before(start) {
		first = first.Add(timeStep)
	}

	for t := first; !t.After(end); t = t.Add(timeStep) {
		xRatio := float64(t.Sub(start)) / float64(duration)
		x := levelArea.Min.X + int(xRatio*float64(levelArea.Dx()))

		// Tick marks under the spectrum track and over the level track
		for y := spectrumArea.Max.Y; y < spectrumArea.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, color.Black)
		}
		for y := levelArea.Min.Y - tickMarkLength; y < levelArea.Min.Y; y++ {
			img.Set(x, y, color.Black)
		}

		label := t.In(a.config.Location).Format(a.config.TimeFormat)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

// drawLevelScale labels the dB axis to the left of the level track.
func (a *annotator) drawLevelScale(img *image.RGBA, bounds LevelBounds, area image.Rectangle) error {
	levelStep := calculateNiceLevelStep(bounds.Max - bounds.Min)
	startLevel := math.Ceil(bounds.Min/levelStep) * levelStep

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for db := startLevel; db <= bounds.Max; db += levelStep {
		y := yForDB(db, bounds, area)

		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%0.0f dB", db)
		textY := y + fontHeight/2 - metrics.Descent.Round()
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing level label: %w", err)
		}
	}
	return nil
}

// drawFrequencyScale labels the frequency axis to the left of the spectrum
// track: DC, mid band and Nyquist.
func (a *annotator) drawFrequencyScale(img *image.RGBA, nyquist float64, area image.Rectangle) error {
	if nyquist <= 0 {
		return nil
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for _, f := range []float64{0, nyquist / 2, nyquist} {
		yRatio := f / nyquist
		y := area.Max.Y - 1 - int(yRatio*float64(area.Dy()-1))

		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		textY := y + fontHeight/2 - metrics.Descent.Round()
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(formatFrequency(f), pt); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, levels meter.MinMaxTrack, bounds LevelBounds, nyquist float64, spectrumArea image.Rectangle) error {
	start := levels[0].Start.In(a.config.Location)
	end := levels[len(levels)-1].End.In(a.config.Location)
	perColumn := levels[0].End.Sub(levels[0].Start)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Time: %s - %s",
		start.Format(a.config.DatetimeFormat),
		end.Format(a.config.DatetimeFormat)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Level: %0.1f..%0.1f dB", bounds.Min, bounds.Max))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("1px = %s", perColumn))
	if nyquist > 0 {
		hzPerPixel := nyquist / float64(spectrumArea.Dy())
		sb.WriteString(fmt.Sprintf(" x %s", formatFrequency(hzPerPixel)))
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

// Helper functions

func formatFrequency(hz float64) string {
	fract, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.1f %sHz", fract, suffix)
}

func calculateNiceLevelStep(rangeDB float64) float64 {
	// Standard step sizes in dB
	steps := []float64{1, 2, 5, 10, 20}

	targetStep := rangeDB / 5 // aim for about 5 labels
	for _, step := range steps {
		if step >= targetStep {
			return step
		}
	}
	return 20
}

func calculateNiceTimeStep(duration time.Duration) time.Duration {
	seconds := duration.Seconds()
	roughStep := seconds / 8 // Aim for about 8 time labels

	// Nice time intervals in seconds
	niceIntervals := []float64{
		300,   // 5 minutes
		600,   // 10 minutes
		900,   // 15 minutes
		1800,  // 30 minutes
		3600,  // 1 hour
		7200,  // 2 hours
		10800, // 3 hours
		14400, // 4 hours
	}

	for _, interval := range niceIntervals {
		if roughStep <= interval {
			return time.Duration(interval) * time.Second
		}
	}

	return time.Hour * 6 // Default for very long durations
}
