package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/atmosphere/internal/weather"
)

const (
	weatherAPIBaseURL = "https://api.weatherapi.com/v1"
	weatherAPITimeFmt = "2006-01-02 15:04"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	o := buildOptions(weatherAPIBaseURL, opts)
	backoff := defaultBackoff()
	if o.backoff != nil {
		backoff = *o.backoff
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
			Limiter: o.limiter,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) requestBuilder(endpoint string, loc weather.Location, extra url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if loc.HasCoordinates() {
			values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
		} else {
			values.Set("q", loc.Query())
		}
		for k, v := range extra {
			values[k] = v
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.Current, error) {
	if p.apiKey == "" {
		return weather.Current{}, weather.ErrProviderNotConfigured
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, p.requestBuilder("current.json", loc, nil))
	if err != nil {
		return weather.Current{}, err
	}

	var payload struct {
		Location struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
		Current struct {
			TempC      float64             `json:"temp_c"`
			FeelsLikeC float64             `json:"feelslike_c"`
			Humidity   float64             `json:"humidity"`
			WindKph    float64             `json:"wind_kph"`
			PressureMb float64             `json:"pressure_mb"`
			VisKm      *float64            `json:"vis_km"`
			UV         *float64            `json:"uv"`
			Condition  weatherAPICondition `json:"condition"`
		} `json:"current"`
	}

	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Current{}, err
	}

	visibility := float64(defaultVisibilityMeters) / 1000
	if payload.Current.VisKm != nil && *payload.Current.VisKm != 0 {
		visibility = *payload.Current.VisKm
	}

	return weather.Current{
		City:        payload.Location.Name,
		Country:     payload.Location.Country,
		Temperature: math.Round(payload.Current.TempC),
		FeelsLike:   math.Round(payload.Current.FeelsLikeC),
		Humidity:    payload.Current.Humidity,
		WindSpeed:   math.Round(payload.Current.WindKph),
		Condition:   payload.Current.Condition.Text,
		Description: payload.Current.Condition.Text,
		Icon:        payload.Current.Condition.Icon,
		Pressure:    payload.Current.PressureMb,
		Visibility:  math.Round(visibility),
		UVIndex:     payload.Current.UV,
	}, nil
}

// FetchForecast maps WeatherAPI's hourly forecast onto samples. Hourly
// entries carry a single temperature, used as both the max and the min.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]weather.ForecastSample, error) {
	if p.apiKey == "" {
		return nil, weather.ErrProviderNotConfigured
	}

	extra := url.Values{}
	extra.Set("days", fmt.Sprintf("%d", weather.MaxForecastDays))

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, p.requestBuilder("forecast.json", loc, extra))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch    int64               `json:"time_epoch"`
					Time         string              `json:"time"`
					TempC        float64             `json:"temp_c"`
					WindKph      float64             `json:"wind_kph"`
					ChanceOfRain float64             `json:"chance_of_rain"`
					Condition    weatherAPICondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	var samples []weather.ForecastSample
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			// "time" is local to the location, which keeps hours on the
			// calendar day WeatherAPI grouped them under.
			ts, err := time.ParseInLocation(weatherAPITimeFmt, h.Time, time.UTC)
			if err != nil {
				ts = time.Unix(h.TimeEpoch, 0).UTC()
			}

			samples = append(samples, weather.ForecastSample{
				Timestamp:         ts,
				TempMaxC:          h.TempC,
				TempMinC:          h.TempC,
				Condition:         h.Condition.Text,
				Icon:              h.Condition.Icon,
				PrecipProbability: h.ChanceOfRain / 100,
				WindSpeedMS:       h.WindKph / 3.6,
			})
		}
	}

	return samples, nil
}
