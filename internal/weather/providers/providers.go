package providers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/atmosphere/internal/weather"
)

const (
	KindOpenWeather = "openweather"
	KindWeatherAPI  = "weatherapi"
)

// New returns the provider registered under kind.
func New(kind string, client *http.Client, apiKey string, opts ...Option) (weather.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindOpenWeather:
		return NewOpenWeatherProvider(client, apiKey, opts...), nil
	case KindWeatherAPI:
		return NewWeatherAPIProvider(client, apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", kind)
	}
}
