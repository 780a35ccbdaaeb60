package trip

import (
	"regexp"
	"strings"
)

// Intent is what the user wants to know about a destination.
type Intent string

const (
	// IntentWeather asks for the forecast only.
	IntentWeather Intent = "weather"
	// IntentPlaces asks for attractions only.
	IntentPlaces Intent = "places"
	// IntentBoth asks for a full briefing; it is the default.
	IntentBoth Intent = "both"
)

var (
	weatherKeywords = []string{"weather", "forecast", "temperature", "rain", "umbrella"}
	placesKeywords  = []string{"places", "attractions", "sights", "things to do", "poi", "tourist"}

	// nonLetter collapses punctuation and digits so "Bangalore!" parses like "Bangalore".
	nonLetter = regexp.MustCompile(`[^A-Za-z\s\-]`)
	spaces    = regexp.MustCompile(`\s+`)

	// destinationPatterns are tried in order; the first match wins.
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`going to\s+([a-z\-\s]+)`),
		regexp.MustCompile(`go to\s+([a-z\-\s]+)`),
		regexp.MustCompile(`travel to\s+([a-z\-\s]+)`),
		regexp.MustCompile(`visit\s+([a-z\-\s]+)`),
		regexp.MustCompile(`in\s+([a-z\-\s]+)`),
		regexp.MustCompile(`at\s+([a-z\-\s]+)`),
		regexp.MustCompile(`to\s+([a-z\-\s]+)`),
	}
)

// ParseQuery infers the intent and extracts the destination from free text.
// It handles punctuation like "Bangalore!" and phrases like
// "I'm going to bangalore". When no pattern matches, the cleaned input
// itself is used as the destination.
func ParseQuery(input string) (destination string, intent Intent) {
	text := strings.TrimSpace(input)
	norm := strings.ToLower(nonLetter.ReplaceAllString(text, " "))

	hasWeather := containsAny(norm, weatherKeywords)
	hasPlaces := containsAny(norm, placesKeywords)

	switch {
	case hasWeather && !hasPlaces:
		intent = IntentWeather
	case hasPlaces && !hasWeather:
		intent = IntentPlaces
	default:
		intent = IntentBoth
	}

	for _, pat := range destinationPatterns {
		if m := pat.FindStringSubmatch(norm); m != nil {
			destination = m[1]
			break
		}
	}
	if destination == "" {
		destination = strings.TrimSpace(nonLetter.ReplaceAllString(text, " "))
	}
	destination = strings.TrimSpace(spaces.ReplaceAllString(destination, " "))

	return destination, intent
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
