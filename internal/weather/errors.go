package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLocation is returned when neither coordinates nor a city are given.
	ErrMissingLocation = errors.New("provide lat/lon or city")

	// ErrProviderNotConfigured is returned when the provider credential is absent.
	ErrProviderNotConfigured = errors.New("API key not configured")
)

// UpstreamError carries a non-success provider response so the boundary can
// forward the provider's own status code and message.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Provider, e.StatusCode, e.Message)
}
