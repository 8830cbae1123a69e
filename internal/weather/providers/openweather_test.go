package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/atmosphere/internal/weather"
)

const owmCurrentBody = `{
	"name": "Lisbon",
	"sys": {"country": "PT"},
	"main": {"temp": 21.6, "feels_like": 20.4, "humidity": 64, "pressure": 1017},
	"wind": {"speed": 4.1},
	"weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}]
}`

const owmForecastBody = `{
	"list": [
		{"dt": 1772344800, "dt_txt": "2026-03-01 06:00:00", "main": {"temp_max": 20, "temp_min": 10}, "weather": [{"main": "Clouds", "icon": "03d"}], "pop": 0.1, "wind": {"speed": 3.2}},
		{"dt": 1772355600, "dt_txt": "2026-03-01 09:00:00", "main": {"temp_max": 25, "temp_min": 8}, "weather": [{"main": "Rain", "icon": "10d"}], "pop": 0.4, "wind": {"speed": 6.0}},
		{"dt": 1772366400, "dt_txt": "2026-03-01 12:00:00", "main": {"temp_max": 22, "temp_min": 12}, "weather": [{"main": "Clear", "icon": "01d"}], "pop": 0.2, "wind": {"speed": 1.0}},
		{"dt": 1772409600, "dt_txt": "2026-03-02 00:00:00", "main": {"temp_max": 18, "temp_min": 9}, "weather": [{"main": "Clear", "icon": "01n"}], "pop": 0, "wind": {"speed": 2.0}}
	]
}`

func fastBackoff() Option {
	return WithBackoff(BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond})
}

func newOWMServer(t *testing.T, handler http.HandlerFunc) (*OpenWeatherProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherProvider(srv.Client(), "test-key", WithBaseURL(srv.URL), fastBackoff()), srv
}

func TestOpenWeather_FetchCurrent(t *testing.T) {
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "Lisbon,PT", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(owmCurrentBody))
	})

	cur, err := p.FetchCurrent(context.Background(), weather.Location{City: "Lisbon", Country: "PT"})
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", cur.City)
	assert.Equal(t, "PT", cur.Country)
	assert.Equal(t, 22.0, cur.Temperature)
	assert.Equal(t, 20.0, cur.FeelsLike)
	assert.Equal(t, 64.0, cur.Humidity)
	assert.Equal(t, 15.0, cur.WindSpeed) // 4.1 m/s * 3.6 = 14.76 km/h
	assert.Equal(t, "Clear", cur.Condition)
	assert.Equal(t, "clear sky", cur.Description)
	assert.Equal(t, "01d", cur.Icon)
	assert.Equal(t, 1017.0, cur.Pressure)
	assert.Equal(t, 10.0, cur.Visibility, "visibility defaults to 10 km")
	assert.Nil(t, cur.UVIndex)
}

func TestOpenWeather_FetchCurrent_ByCoordinates(t *testing.T) {
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "38.7223", r.URL.Query().Get("lat"))
		assert.Equal(t, "-9.1393", r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("q"))
		w.Write([]byte(`{"name":"Lisbon","visibility":6500,"weather":[]}`))
	})

	lat, lon := 38.7223, -9.1393
	cur, err := p.FetchCurrent(context.Background(), weather.Location{Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	assert.Equal(t, 7.0, cur.Visibility)
	assert.Empty(t, cur.Condition)
}

func TestOpenWeather_FetchForecast(t *testing.T) {
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		w.Write([]byte(owmForecastBody))
	})

	samples, err := p.FetchForecast(context.Background(), weather.Location{City: "Lisbon"})
	require.NoError(t, err)
	require.Len(t, samples, 4)

	first := samples[0]
	assert.Equal(t, time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 20.0, first.TempMaxC)
	assert.Equal(t, 10.0, first.TempMinC)
	assert.Equal(t, "Clouds", first.Condition)
	assert.Equal(t, "03d", first.Icon)
	assert.Equal(t, 0.1, first.PrecipProbability)
	assert.Equal(t, 3.2, first.WindSpeedMS)

	daily := weather.AggregateDaily(samples)
	require.Len(t, daily, 2)
	assert.Equal(t, 25.0, daily[0].High)
	assert.Equal(t, 8.0, daily[0].Low)
	assert.InDelta(t, 40.0, daily[0].Pop, 1e-9)
}

func TestOpenWeather_NotFoundForwardsMessage(t *testing.T) {
	var calls int32
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := p.FetchCurrent(context.Background(), weather.Location{City: "Atlantis"})
	var upstream *weather.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "city not found", upstream.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors are not retried")
}

func TestOpenWeather_RetriesServerErrors(t *testing.T) {
	var calls int32
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(owmCurrentBody))
	})

	cur, err := p.FetchCurrent(context.Background(), weather.Location{City: "Lisbon"})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", cur.City)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOpenWeather_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"cod": 429, "message": "Your account is temporary blocked"}`))
	})

	_, err := p.FetchForecast(context.Background(), weather.Location{City: "Lisbon"})
	require.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var upstream *weather.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Equal(t, "Your account is temporary blocked", upstream.Message)
}

func TestOpenWeather_ServerErrorForwardedAfterRetries(t *testing.T) {
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message": "service busy"}`))
	})

	_, err := p.FetchCurrent(context.Background(), weather.Location{City: "Lisbon"})
	require.ErrorIs(t, err, errServerError)

	var upstream *weather.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, &weather.UpstreamError{
		Provider:   "openweathermap",
		StatusCode: http.StatusServiceUnavailable,
		Message:    "service busy",
	}, upstream)
}

func TestOpenWeather_MissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")

	_, err := p.FetchCurrent(context.Background(), weather.Location{City: "Lisbon"})
	assert.ErrorIs(t, err, weather.ErrProviderNotConfigured)

	_, err = p.FetchForecast(context.Background(), weather.Location{City: "Lisbon"})
	assert.ErrorIs(t, err, weather.ErrProviderNotConfigured)
}

func TestOpenWeather_ContextCanceled(t *testing.T) {
	p, _ := newOWMServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(owmCurrentBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchCurrent(ctx, weather.Location{City: "Lisbon"})
	assert.ErrorIs(t, err, context.Canceled)
}
