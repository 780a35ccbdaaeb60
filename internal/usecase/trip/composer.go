package trip

import (
	"fmt"
	"strings"

	"travel-concierge/internal/domain/entity"
)

// Fixed user-facing messages. Internal failure detail (HTTP status, breaker
// state, retry counts) never reaches the user; both an open circuit and
// exhausted retries render as the same temporary-unavailability apology.
const (
	// MsgPlaceNotFound is returned when geocoding finds no such place.
	MsgPlaceNotFound = "I don't think this place exists."

	// MsgAllUnavailable is returned when every requested lookup failed.
	MsgAllUnavailable = "Sorry, I couldn't retrieve weather or places right now."

	msgWeatherUnavailable = "Sorry, weather information is temporarily unavailable."
	msgPlacesUnavailable  = "Sorry, attraction information is temporarily unavailable."
)

// Compose merges the two settled outcomes into one reply.
//
// Policy: every successful half is included; a failed half is replaced by a
// fixed apology fragment; if everything requested failed, a single failure
// message is returned. An empty attraction list from a healthy provider is
// simply omitted, it is not an error.
func Compose(destination string, intent Intent, weather WeatherOutcome, places PlacesOutcome) string {
	wantWeather := intent == IntentWeather || intent == IntentBoth
	wantPlaces := intent == IntentPlaces || intent == IntentBoth

	var parts []string
	anySuccess := false

	if wantWeather {
		if weather.OK() {
			parts = append(parts, fmt.Sprintf("Weather in %s: %s.", destination, weather.Reading.Summary()))
			anySuccess = true
		} else {
			parts = append(parts, msgWeatherUnavailable)
		}
	}

	if wantPlaces {
		switch {
		case places.OK() && len(places.Attractions) > 0:
			parts = append(parts, formatAttractions(destination, places.Attractions))
			anySuccess = true
		case places.OK():
			// Healthy provider, nothing nearby: drop the section.
			anySuccess = true
		default:
			parts = append(parts, msgPlacesUnavailable)
		}
	}

	if !anySuccess {
		return MsgAllUnavailable
	}
	return strings.Join(parts, "\n\n")
}

func formatAttractions(destination string, attractions []entity.Attraction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top attractions near %s:", destination)
	for _, a := range attractions {
		b.WriteString("\n- ")
		b.WriteString(a.Name)
	}
	return b.String()
}
