package weather

import (
	"fmt"
	"strings"
	"time"
)

// Location identifies the place a dashboard is requested for.
// Either Lat and Lon are both set, or City is non-empty.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Validate returns ErrMissingLocation when neither coordinates nor a city
// are supplied.
func (l Location) Validate() error {
	if l.HasCoordinates() || strings.TrimSpace(l.City) != "" {
		return nil
	}
	return ErrMissingLocation
}

// Key returns a canonical string key for indexing this location in stores.
// Coordinates win over the city name, mirroring how providers are queried.
func (l Location) Key() string {
	if l.HasCoordinates() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	key := strings.ToLower(strings.TrimSpace(l.City))
	if l.Country != "" {
		key += ":" + strings.ToLower(strings.TrimSpace(l.Country))
	}
	return key
}

// Query renders the location as a provider "q" parameter ("city" or
// "city,country").
func (l Location) Query() string {
	q := strings.TrimSpace(l.City)
	if l.Country != "" {
		q = fmt.Sprintf("%s,%s", q, strings.TrimSpace(l.Country))
	}
	return q
}

// ForecastSample is one 3-hour slot of a provider forecast feed.
type ForecastSample struct {
	Timestamp         time.Time `json:"timestamp"`
	TempMaxC          float64   `json:"tempMax"`
	TempMinC          float64   `json:"tempMin"`
	Condition         string    `json:"condition"`
	Icon              string    `json:"icon"`
	PrecipProbability float64   `json:"pop"` // fraction in [0,1]
	WindSpeedMS       float64   `json:"wind"`
}

// DailySummary is one calendar day collapsed from several forecast samples.
type DailySummary struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
	Pop       float64 `json:"pop"` // percent 0-100
	Wind      float64 `json:"wind"`
}

// Current holds the current-conditions record returned by a provider.
type Current struct {
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Temperature float64  `json:"temperature"` // °C, rounded
	FeelsLike   float64  `json:"feelsLike"`   // °C, rounded
	Humidity    float64  `json:"humidity"`    // percent
	WindSpeed   float64  `json:"windSpeed"`   // km/h, rounded
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Pressure    float64  `json:"pressure"`   // hPa
	Visibility  float64  `json:"visibility"` // km
	UVIndex     *float64 `json:"uvIndex"`
}

// Dashboard is the combined payload rendered by the client.
type Dashboard struct {
	Current
	Daily []DailySummary `json:"daily"`
	Mood  MoodDescriptor `json:"mood"`
}

// Snapshot is a dashboard as it was fetched at a point in time.
type Snapshot struct {
	Location  Location  `json:"location"`
	FetchedAt time.Time `json:"fetchedAt"` // always UTC
	Dashboard Dashboard `json:"dashboard"`
}
