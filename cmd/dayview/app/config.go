package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

const defaultFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf"

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	FontPath      string
	TimeZone      *time.Location
	Latitude      *float64
	Longitude     *float64
	MinLevel      *float64
	MaxLevel      *float64
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:   ImagePNG,
		Theme:    DefaultTheme,
		FontPath: defaultFontPath,
		TimeZone: time.Local,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme, tz string
	var latitude, longitude, minLevel, maxLevel float64
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", string(DefaultTheme), "Spectrum color theme. [classic, grayscale, thermal]")
	flag.StringVar(&c.FontPath, "font", defaultFontPath, "Path to a TTF font for annotations")
	flag.StringVar(&tz, "tz", "", "IANA timezone for the time scale (default: local)")
	flag.Float64Var(&latitude, "lat", 0, "Observer latitude for day/night shading (format nn.n)")
	flag.Float64Var(&longitude, "long", 0, "Observer longitude for day/night shading (format nn.n)")
	flag.Float64Var(&minLevel, "min-level", 0, "Define a manual minimum level (format nn.n)")
	flag.Float64Var(&maxLevel, "max-level", 0, "Define a manual maximum level (format nn.n)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time and level scales")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	var latSet, longSet bool
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			c.Latitude = &latitude
			latSet = true
		case "long":
			c.Longitude = &longitude
			longSet = true
		case "min-level":
			c.MinLevel = &minLevel
		case "max-level":
			c.MaxLevel = &maxLevel
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := colorThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if latSet != longSet {
		err = errors.New("latitude and longitude must be provided together")
	}

	if err == nil && tz != "" {
		if c.TimeZone, err = time.LoadLocation(tz); err != nil {
			err = fmt.Errorf("invalid timezone: %w", err)
		}
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
