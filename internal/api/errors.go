package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/functionality"
	"github.com/nerrad567/smarthome-core/internal/house"
	"github.com/nerrad567/smarthome-core/internal/reconcile"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
	"github.com/nerrad567/smarthome-core/internal/weather"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
	ErrCodeBadGateway     = "bad_gateway"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeInvalidData    = "invalid_data"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps domain errors onto HTTP responses. Unrecognised
// errors are logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sensor.ErrSensorNotFound),
		errors.Is(err, sensor.ErrDeviceNotFound),
		errors.Is(err, reconcile.ErrValueNotFound):
		writeNotFound(w, err.Error())

	case errors.Is(err, reconcile.ErrInvalidRange),
		errors.Is(err, weather.ErrInvalidHour),
		errors.Is(err, weather.ErrInvalidEvent),
		errors.Is(err, functionality.ErrUnknownFunctionality):
		writeBadRequest(w, err.Error())

	case errors.Is(err, value.ErrNonNumeric):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeInvalidData, err.Error())

	case errors.Is(err, weather.ErrRequestFailed),
		errors.Is(err, weather.ErrBadResponse):
		writeError(w, http.StatusBadGateway, ErrCodeBadGateway, err.Error())

	case errors.Is(err, weather.ErrNotConfigured),
		errors.Is(err, reconcile.ErrNoWeatherSource),
		errors.Is(err, house.ErrNoHouseConfigured):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())

	default:
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
	}
}
