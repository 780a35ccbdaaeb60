// Package config loads and validates configuration for the external travel
// data providers. Values come from built-in defaults, an optional YAML file
// (CONFIG_FILE), and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	pkgcfg "travel-concierge/pkg/config"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds the connection settings for one external endpoint.
type ProviderConfig struct {
	// BaseURL is the provider's root URL (scheme + host)
	BaseURL string `yaml:"base_url"`

	// Timeout is the hard per-attempt upper bound for one request
	Timeout time.Duration `yaml:"timeout"`
}

// Config holds the full provider configuration.
type Config struct {
	// UserAgent is the identifying contact header sent on every outbound call.
	// The geocoding provider's usage policy requires it.
	UserAgent string `yaml:"user_agent"`

	Geocoder ProviderConfig `yaml:"geocoder"`
	Weather  ProviderConfig `yaml:"weather"`
	Places   ProviderConfig `yaml:"places"`

	// GeocoderRPS caps the sustained geocoding request rate (provider policy: 1/s)
	GeocoderRPS float64 `yaml:"geocoder_rps"`

	// PlacesRadiusMeters is the search radius for nearby attractions
	PlacesRadiusMeters int `yaml:"places_radius_meters"`

	// MaxAttractions is the maximum number of attractions returned per query
	MaxAttractions int `yaml:"max_attractions"`
}

// Default returns the built-in provider configuration.
func Default() Config {
	return Config{
		UserAgent: "travel-concierge/1.0",
		Geocoder: ProviderConfig{
			BaseURL: "https://nominatim.openstreetmap.org",
			Timeout: 10 * time.Second,
		},
		Weather: ProviderConfig{
			BaseURL: "https://api.open-meteo.com",
			Timeout: 10 * time.Second,
		},
		Places: ProviderConfig{
			BaseURL: "https://overpass-api.de",
			Timeout: 20 * time.Second,
		},
		GeocoderRPS:        1.0,
		PlacesRadiusMeters: 20000,
		MaxAttractions:     5,
	}
}

// Load builds the provider configuration.
// Precedence: defaults < YAML file (CONFIG_FILE env) < environment variables.
// Returns an error if the YAML file is set but unreadable, or if the final
// configuration fails validation.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.UserAgent = pkgcfg.GetEnvString("CONTACT_USER_AGENT", cfg.UserAgent)
	cfg.Geocoder.BaseURL = pkgcfg.GetEnvString("GEOCODER_BASE_URL", cfg.Geocoder.BaseURL)
	cfg.Geocoder.Timeout = pkgcfg.GetEnvDuration("GEOCODER_TIMEOUT", cfg.Geocoder.Timeout)
	cfg.Weather.BaseURL = pkgcfg.GetEnvString("WEATHER_BASE_URL", cfg.Weather.BaseURL)
	cfg.Weather.Timeout = pkgcfg.GetEnvDuration("WEATHER_TIMEOUT", cfg.Weather.Timeout)
	cfg.Places.BaseURL = pkgcfg.GetEnvString("PLACES_BASE_URL", cfg.Places.BaseURL)
	cfg.Places.Timeout = pkgcfg.GetEnvDuration("PLACES_TIMEOUT", cfg.Places.Timeout)
	cfg.GeocoderRPS = pkgcfg.GetEnvFloat("GEOCODER_RPS", cfg.GeocoderRPS)
	cfg.PlacesRadiusMeters = pkgcfg.GetEnvInt("PLACES_RADIUS_METERS", cfg.PlacesRadiusMeters)
	cfg.MaxAttractions = pkgcfg.GetEnvInt("MAX_ATTRACTIONS", cfg.MaxAttractions)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the clients cannot work with.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty (provider usage policy requires an identifying contact header)")
	}
	for name, p := range map[string]ProviderConfig{
		"geocoder": c.Geocoder,
		"weather":  c.Weather,
		"places":   c.Places,
	} {
		if err := p.validate(name); err != nil {
			return err
		}
	}
	if c.GeocoderRPS <= 0 {
		return fmt.Errorf("geocoder rps must be positive, got %v", c.GeocoderRPS)
	}
	if c.PlacesRadiusMeters <= 0 {
		return fmt.Errorf("places radius must be positive, got %d", c.PlacesRadiusMeters)
	}
	if c.MaxAttractions < 1 || c.MaxAttractions > 50 {
		return fmt.Errorf("max attractions must be between 1 and 50, got %d", c.MaxAttractions)
	}
	return nil
}

func (p ProviderConfig) validate(name string) error {
	if p.BaseURL == "" {
		return fmt.Errorf("%s base URL must not be empty", name)
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("%s base URL is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s base URL must use http or https, got %q", name, u.Scheme)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive, got %v", name, p.Timeout)
	}
	return nil
}
