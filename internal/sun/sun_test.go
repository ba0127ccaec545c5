package sun

import (
	"errors"
	"testing"
	"time"
)

func TestNewCalculator_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{"equator prime meridian", 0, 0, false},
		{"northern mid latitude", 55.8, -4.5, false},
		{"poles", 90, 180, false},
		{"latitude too high", 91, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 181, true},
		{"longitude too low", 0, -181, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCalculator(tc.lat, tc.lon)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewCalculator(%f, %f) error = %v, wantErr = %v", tc.lat, tc.lon, err, tc.wantErr)
			}
		})
	}
}

func TestTimes_EquatorEquinox(t *testing.T) {
	c, err := NewCalculator(0, 0)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	date := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	times, err := c.Times(date)
	if err != nil {
		t.Fatalf("Times: %v", err)
	}

	// At the equator on an equinox, daylight is close to 12 hours. The
	// official zenith adds a few minutes for refraction and disc radius.
	daylight := times.Daylight()
	if daylight < 12*time.Hour || daylight > 12*time.Hour+20*time.Minute {
		t.Errorf("daylight = %s, want roughly 12h", daylight)
	}

	// Sunrise and sunset are symmetric about solar noon.
	before := times.Noon.Sub(times.Sunrise)
	after := times.Sunset.Sub(times.Noon)
	if diff := (before - after).Abs(); diff > time.Second {
		t.Errorf("sunrise/sunset asymmetric about noon by %s", diff)
	}

	// At longitude 0 in UTC, solar noon is near clock noon.
	clockNoon := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	if diff := times.Noon.Sub(clockNoon).Abs(); diff > 20*time.Minute {
		t.Errorf("solar noon = %s, want near 12:00 UTC", times.Noon)
	}

	if !times.Sunrise.Before(times.Noon) || !times.Noon.Before(times.Sunset) {
		t.Errorf("event order broken: rise %s, noon %s, set %s", times.Sunrise, times.Noon, times.Sunset)
	}
}

func TestTimes_SummerLongerThanWinter(t *testing.T) {
	c, err := NewCalculator(55.8, -4.5)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	summer, err := c.Times(time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Times (June): %v", err)
	}
	winter, err := c.Times(time.Date(2024, time.December, 21, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Times (December): %v", err)
	}

	if summer.Daylight() <= winter.Daylight() {
		t.Errorf("summer daylight %s not longer than winter %s", summer.Daylight(), winter.Daylight())
	}
	if summer.Daylight() < 16*time.Hour {
		t.Errorf("midsummer daylight at 55.8N = %s, want > 16h", summer.Daylight())
	}
	if winter.Daylight() > 8*time.Hour {
		t.Errorf("midwinter daylight at 55.8N = %s, want < 8h", winter.Daylight())
	}
}

func TestTimes_Polar(t *testing.T) {
	c, err := NewCalculator(80, 0)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	if _, err = c.Times(time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)); !errors.Is(err, ErrPolarDay) {
		t.Errorf("June at 80N: error = %v, want ErrPolarDay", err)
	}
	if _, err = c.Times(time.Date(2024, time.December, 21, 12, 0, 0, 0, time.UTC)); !errors.Is(err, ErrPolarNight) {
		t.Errorf("December at 80N: error = %v, want ErrPolarNight", err)
	}

	day, err := c.IsDaytime(time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC))
	if err != nil || !day {
		t.Errorf("IsDaytime during polar day = %v, %v, want true, nil", day, err)
	}
	night, err := c.IsDaytime(time.Date(2024, time.December, 21, 12, 0, 0, 0, time.UTC))
	if err != nil || night {
		t.Errorf("IsDaytime during polar night = %v, %v, want false, nil", night, err)
	}
}

func TestIsDaytime(t *testing.T) {
	c, err := NewCalculator(0, 0)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	day, err := c.IsDaytime(time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("IsDaytime: %v", err)
	}
	if !day {
		t.Error("noon on the equator must be daytime")
	}

	night, err := c.IsDaytime(time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("IsDaytime: %v", err)
	}
	if night {
		t.Error("midnight on the equator must be nighttime")
	}
}
