package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/atmosphere/internal/weather"
)

const (
	JournalDriverSQLite   = "sqlite"
	JournalDriverPostgres = "postgres"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// Provider selects the weather backend ("openweather" or "weatherapi").
	Provider string

	HTTPTimeout time.Duration

	// CacheTTL is how long a fetched dashboard is served without refetching.
	CacheTTL time.Duration

	// RefreshInterval controls how often tracked locations are refreshed.
	RefreshInterval time.Duration

	// Locations refreshed in the background.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Outbound provider rate limit.
	ProviderRPS   float64
	ProviderBurst int

	JournalDriver string
	DatabaseURL   string
	SQLitePath    string

	AllowOrigins string
	LogLevel     slog.Level
	Port         string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", "openweather"))

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.ProviderRPS = getenvFloat("PROVIDER_RPS", 1)
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 5)

	cfg.JournalDriver = strings.ToLower(getenvDefault("JOURNAL_DRIVER", JournalDriverSQLite))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "atmosphere.db")
	switch cfg.JournalDriver {
	case JournalDriverSQLite:
	case JournalDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when JOURNAL_DRIVER=%s", JournalDriverPostgres)
		}
	default:
		return nil, fmt.Errorf("invalid JOURNAL_DRIVER %q", cfg.JournalDriver)
	}

	cfg.AllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")
	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadTrackedLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// ProviderAPIKey returns the credential of the selected provider.
func (c *AppConfig) ProviderAPIKey() string {
	if c.Provider == "weatherapi" {
		return c.WeatherAPIKey
	}
	return c.OpenWeatherAPIKey
}

func loadTrackedLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	if strings.TrimSpace(city) == "" {
		return nil, nil
	}
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")

	cities := strings.Split(city, ",")
	var countries []string
	if country != "" {
		countries = strings.Split(country, ",")
		if len(cities) != len(countries) {
			return nil, fmt.Errorf("number of cities and countries must be the same")
		}
	}

	var locs []weather.Location
	for i := range cities {
		loc := weather.Location{City: strings.TrimSpace(cities[i])}
		if countries != nil {
			loc.Country = strings.TrimSpace(countries[i])
		}
		if loc.City == "" {
			return nil, fmt.Errorf("empty city in WEATHER_LOCATION_CITY")
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
