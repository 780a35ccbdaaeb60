// Package entity defines the domain model for travel queries: resolved
// coordinates, weather readings, and nearby attractions.
package entity

import (
	"fmt"
	"math"
)

// Coordinates is a resolved geographic location.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate checks that the coordinates are within valid WGS84 ranges.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{Field: "lat", Message: fmt.Sprintf("must be between -90 and 90, got %v", c.Lat)}
	}
	if c.Lon < -180 || c.Lon > 180 {
		return &ValidationError{Field: "lon", Message: fmt.Sprintf("must be between -180 and 180, got %v", c.Lon)}
	}
	return nil
}

// WeatherReading is the current weather at a location.
// PrecipProbability is nil when the provider has no probability value
// for the current time slot.
type WeatherReading struct {
	TemperatureC      float64
	PrecipProbability *int
}

// Summary renders the reading as a short user-facing sentence,
// e.g. "24°C with a chance of 35% to rain".
func (w WeatherReading) Summary() string {
	prob := "N/A"
	if w.PrecipProbability != nil {
		prob = fmt.Sprintf("%d%%", *w.PrecipProbability)
	}
	return fmt.Sprintf("%d°C with a chance of %s to rain", int(math.Round(w.TemperatureC)), prob)
}

// Attraction is a named point of interest near a destination.
type Attraction struct {
	Name string
}
