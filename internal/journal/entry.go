// Package journal persists free-text weather journal entries scoped to a
// device identifier.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ListLimit is the maximum number of entries returned for a device.
const ListLimit = 20

var (
	// ErrNotFound is returned when an entry does not exist for the device.
	ErrNotFound = errors.New("journal entry not found")

	// ErrInvalidEntry wraps validation failures on Input.
	ErrInvalidEntry = errors.New("invalid journal entry")

	// ErrMissingDevice is returned when no device identifier is supplied.
	ErrMissingDevice = errors.New("device id is required")
)

var validate = validator.New()

// Entry is a persisted journal record.
type Entry struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	City             string    `json:"city"`
	Country          *string   `json:"country"`
	Temperature      float64   `json:"temperature"`
	FeelsLike        *float64  `json:"feels_like"`
	Humidity         *float64  `json:"humidity"`
	WindSpeed        *float64  `json:"wind_speed"`
	WeatherCondition string    `json:"weather_condition"`
	WeatherIcon      *string   `json:"weather_icon"`
	Note             *string   `json:"note"`
	MoodTag          *string   `json:"mood_tag"`
	DeviceID         string    `json:"device_id"`
}

// Input is what a client submits to create an entry.
type Input struct {
	City             string   `json:"city" validate:"required,max=200"`
	Country          string   `json:"country" validate:"max=100"`
	Temperature      *float64 `json:"temperature" validate:"required"`
	FeelsLike        *float64 `json:"feels_like"`
	Humidity         *float64 `json:"humidity" validate:"omitempty,gte=0,lte=100"`
	WindSpeed        *float64 `json:"wind_speed" validate:"omitempty,gte=0"`
	WeatherCondition string   `json:"weather_condition" validate:"required,max=100"`
	WeatherIcon      string   `json:"weather_icon" validate:"max=200"`
	Note             string   `json:"note" validate:"max=4000"`
	MoodTag          string   `json:"mood_tag" validate:"max=64"`
}

// Validate checks required fields and bounds.
func (in Input) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}

// Store persists journal entries.
type Store interface {
	Create(ctx context.Context, deviceID string, in Input) (*Entry, error)
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]*Entry, error)
	Delete(ctx context.Context, deviceID, id string) error
}

// newEntry validates in and builds the record to insert. Blank optional
// text is stored as NULL.
func newEntry(deviceID string, in Input, now time.Time) (*Entry, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, ErrMissingDevice
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	return &Entry{
		ID:               uuid.NewString(),
		CreatedAt:        now.UTC(),
		City:             strings.TrimSpace(in.City),
		Country:          optional(in.Country),
		Temperature:      *in.Temperature,
		FeelsLike:        in.FeelsLike,
		Humidity:         in.Humidity,
		WindSpeed:        in.WindSpeed,
		WeatherCondition: strings.TrimSpace(in.WeatherCondition),
		WeatherIcon:      optional(in.WeatherIcon),
		Note:             optional(in.Note),
		MoodTag:          optional(in.MoodTag),
		DeviceID:         deviceID,
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > ListLimit {
		return ListLimit
	}
	return limit
}
