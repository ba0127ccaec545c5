// Package sun calculates sunrise and sunset times from an observer's
// latitude and longitude, using the NOAA solar calculator method
// (https://gml.noaa.gov/grad/solcalc/calcdetails.html). Results are
// approximations and may differ from observed values due to atmospheric
// conditions.
package sun

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Solar zenith angles for the supported day/night boundaries, in degrees.
// ZenithOfficial includes atmospheric refraction and the solar disc radius.
const (
	ZenithOfficial     = 90.833
	ZenithCivil        = 96.0
	ZenithNautical     = 102.0
	ZenithAstronomical = 108.0
)

var (
	// ErrPolarDay indicates the sun never sets on the requested date.
	ErrPolarDay = errors.New("sun does not set on this date")

	// ErrPolarNight indicates the sun never rises on the requested date.
	ErrPolarNight = errors.New("sun does not rise on this date")
)

// Times holds the solar events of one calendar day, in the location of the
// date they were calculated for.
type Times struct {
	Sunrise time.Time
	Noon    time.Time
	Sunset  time.Time
}

// Daylight returns the length of the day between sunrise and sunset.
func (t Times) Daylight() time.Duration {
	return t.Sunset.Sub(t.Sunrise)
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithZenith sets the solar zenith angle in degrees that defines the
// day/night boundary. Defaults to ZenithOfficial.
func WithZenith(degrees float64) Option {
	return func(c *Calculator) {
		c.zenith = degrees
	}
}

// Calculator computes solar event times for a fixed observer position.
type Calculator struct {
	latitude  float64
	longitude float64
	zenith    float64
}

// NewCalculator creates a Calculator for the given position. Latitude is in
// degrees north of the equator, longitude in degrees east of the prime
// meridian.
func NewCalculator(latitude, longitude float64, opts ...Option) (*Calculator, error) {
	if latitude < -90 || latitude > 90 {
		return nil, fmt.Errorf("latitude %f out of range [-90, 90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("longitude %f out of range [-180, 180]", longitude)
	}

	c := &Calculator{
		latitude:  latitude,
		longitude: longitude,
		zenith:    ZenithOfficial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Times returns sunrise, solar noon and sunset for the calendar day of date,
// expressed in date's location. Returns ErrPolarDay or ErrPolarNight when the
// sun does not cross the configured zenith on that date.
func (c *Calculator) Times(date time.Time) (Times, error) {
	jc := julianCentury(julianDay(date))

	ha, err := c.hourAngle(jc)
	if err != nil {
		return Times{}, err
	}

	_, offset := date.Zone()
	tz := float64(offset) / 3600

	noon := (720 - 4*c.longitude - eqOfTime(jc) + tz*60) / 1440
	rise := noon - ha*4/1440
	set := noon + ha*4/1440

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return Times{
		Sunrise: fracToTime(midnight, rise),
		Noon:    fracToTime(midnight, noon),
		Sunset:  fracToTime(midnight, set),
	}, nil
}

// IsDaytime reports whether t falls between sunrise and sunset on its
// calendar day. During a polar day or night the answer is implied by which
// condition holds.
func (c *Calculator) IsDaytime(t time.Time) (bool, error) {
	times, err := c.Times(t)
	switch {
	case errors.Is(err, ErrPolarDay):
		return true, nil
	case errors.Is(err, ErrPolarNight):
		return false, nil
	case err != nil:
		return false, err
	}
	return !t.Before(times.Sunrise) && t.Before(times.Sunset), nil
}

// hourAngle returns the sunrise hour angle in degrees for the configured
// position and zenith.
func (c *Calculator) hourAngle(jc float64) (float64, error) {
	decl := rad(declination(jc))
	lat := rad(c.latitude)

	cosHA := math.Cos(rad(c.zenith))/(math.Cos(lat)*math.Cos(decl)) - math.Tan(lat)*math.Tan(decl)
	switch {
	case cosHA < -1:
		return 0, ErrPolarDay
	case cosHA > 1:
		return 0, ErrPolarNight
	}
	return deg(math.Acos(cosHA)), nil
}

func fracToTime(midnight time.Time, frac float64) time.Time {
	return midnight.Add(time.Duration(frac * 24 * float64(time.Hour)))
}

func rad(degrees float64) float64 { return degrees * math.Pi / 180 }

func deg(radians float64) float64 { return radians * 180 / math.Pi }

// julianDay converts date to the Julian day used by the NOAA spreadsheet.
// The epoch 1899-12-30 keeps the day numbers compatible with its reference
// column.
func julianDay(date time.Time) float64 {
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days := math.Round(day.Sub(base).Hours() / 24)

	frac := float64(date.Hour()*3600+date.Minute()*60+date.Second()) / 86400

	_, offset := date.Zone()
	tz := float64(offset) / 3600

	return days + 2415018.5 + frac - tz/24
}

func julianCentury(jd float64) float64 {
	return (jd - 2451545) / 36525
}

func geomMeanLong(jc float64) float64 {
	return math.Mod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
}

func geomMeanAnom(jc float64) float64 {
	return 357.52911 + jc*(35999.05029-0.0001537*jc)
}

func orbitEccentricity(jc float64) float64 {
	return 0.016708634 - jc*(0.000042037+0.0000001267*jc)
}

func eqOfCenter(jc float64) float64 {
	anom := geomMeanAnom(jc)
	return math.Sin(rad(anom))*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(rad(2*anom))*(0.019993-0.000101*jc) +
		math.Sin(rad(3*anom))*0.000289
}

func apparentLong(jc float64) float64 {
	trueLong := geomMeanLong(jc) + eqOfCenter(jc)
	return trueLong - 0.00569 - 0.00478*math.Sin(rad(125.04-1934.136*jc))
}

func obliqCorrection(jc float64) float64 {
	meanObliq := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	return meanObliq + 0.00256*math.Cos(rad(125.04-1934.136*jc))
}

// declination returns the sun's declination in degrees.
func declination(jc float64) float64 {
	return deg(math.Asin(math.Sin(rad(obliqCorrection(jc))) * math.Sin(rad(apparentLong(jc)))))
}

// eqOfTime returns the equation of time in minutes.
func eqOfTime(jc float64) float64 {
	long := rad(geomMeanLong(jc))
	anom := rad(geomMeanAnom(jc))
	ecc := orbitEccentricity(jc)

	v := obliqCorrection(jc) / 2
	vary := math.Tan(rad(v)) * math.Tan(rad(v))

	return 4 * deg(vary*math.Sin(2*long)-
		2*ecc*math.Sin(anom)+
		4*ecc*vary*math.Sin(anom)*math.Cos(2*long)-
		0.5*vary*vary*math.Sin(4*long)-
		1.25*ecc*ecc*math.Sin(2*anom))
}
