package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/atmosphere/internal/weather"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

	// OpenWeatherMap omits visibility for some stations.
	defaultVisibilityMeters = 10000

	forecastTimeLayout = "2006-01-02 15:04:05"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	o := buildOptions(openWeatherBaseURL, opts)
	backoff := defaultBackoff()
	if o.backoff != nil {
		backoff = *o.backoff
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
			Limiter: o.limiter,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) requestBuilder(endpoint string, loc weather.Location) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		if loc.HasCoordinates() {
			values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
			values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
		} else {
			values.Set("q", loc.Query())
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.Current, error) {
	if p.apiKey == "" {
		return weather.Current{}, weather.ErrProviderNotConfigured
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, p.requestBuilder("weather", loc))
	if err != nil {
		return weather.Current{}, err
	}

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Visibility *float64       `json:"visibility"`
		Weather    []owmCondition `json:"weather"`
	}

	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Current{}, err
	}

	visibility := float64(defaultVisibilityMeters)
	if payload.Visibility != nil && *payload.Visibility != 0 {
		visibility = *payload.Visibility
	}

	var cond owmCondition
	if len(payload.Weather) > 0 {
		cond = payload.Weather[0]
	}

	return weather.Current{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: math.Round(payload.Main.Temp),
		FeelsLike:   math.Round(payload.Main.FeelsLike),
		Humidity:    payload.Main.Humidity,
		WindSpeed:   math.Round(payload.Wind.Speed * 3.6), // m/s to km/h
		Condition:   cond.Main,
		Description: cond.Description,
		Icon:        cond.Icon,
		Pressure:    payload.Main.Pressure,
		Visibility:  math.Round(visibility / 1000),
	}, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]weather.ForecastSample, error) {
	if p.apiKey == "" {
		return nil, weather.ErrProviderNotConfigured
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, p.requestBuilder("forecast", loc))
	if err != nil {
		return nil, err
	}

	var payload struct {
		List []struct {
			Dt    int64  `json:"dt"`
			DtTxt string `json:"dt_txt"`
			Main  struct {
				TempMax float64 `json:"temp_max"`
				TempMin float64 `json:"temp_min"`
			} `json:"main"`
			Weather []owmCondition `json:"weather"`
			Pop     float64        `json:"pop"`
			Wind    struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}

	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	samples := make([]weather.ForecastSample, 0, len(payload.List))
	for _, item := range payload.List {
		ts, err := time.ParseInLocation(forecastTimeLayout, item.DtTxt, time.UTC)
		if err != nil {
			ts = time.Unix(item.Dt, 0).UTC()
		}

		var cond owmCondition
		if len(item.Weather) > 0 {
			cond = item.Weather[0]
		}

		samples = append(samples, weather.ForecastSample{
			Timestamp:         ts,
			TempMaxC:          item.Main.TempMax,
			TempMinC:          item.Main.TempMin,
			Condition:         cond.Main,
			Icon:              cond.Icon,
			PrecipProbability: item.Pop,
			WindSpeedMS:       item.Wind.Speed,
		})
	}

	return samples, nil
}
