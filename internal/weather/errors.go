package weather

import "errors"

// Sentinel errors for weather lookups.
var (
	// ErrInvalidHour is returned for an hour outside 0-23.
	ErrInvalidHour = errors.New("weather: hour must be between 0 and 23")

	// ErrInvalidEvent is returned for a solar event other than sunrise or sunset.
	ErrInvalidEvent = errors.New("weather: event must be sunrise or sunset")

	// ErrNotConfigured is returned when no weather service URL is set.
	ErrNotConfigured = errors.New("weather: service url not configured")

	// ErrRequestFailed is returned when the weather service cannot be reached
	// or answers with a non-200 status.
	ErrRequestFailed = errors.New("weather: request failed")

	// ErrBadResponse is returned when the response body cannot be decoded.
	ErrBadResponse = errors.New("weather: malformed response")
)
