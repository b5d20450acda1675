package api

import (
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/weather"
)

type temperatureResponse struct {
	Hour        int     `json:"hour"`
	Temperature float64 `json:"temperature"`
}

type sunEventResponse struct {
	Event string  `json:"event"`
	Hour  float64 `json:"hour"`
}

type windResponse struct {
	StartHour int             `json:"start_hour"`
	EndHour   int             `json:"end_hour"`
	Wind      weather.Reading `json:"wind"`
}

// requireWeather writes a 503 and returns false when no weather service is wired.
func (s *Server) requireWeather(w http.ResponseWriter) bool {
	if s.weather == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, weather.ErrNotConfigured.Error())
		return false
	}
	return true
}

func (s *Server) handleWeatherTemperature(w http.ResponseWriter, r *http.Request) {
	if !s.requireWeather(w) {
		return
	}
	hour, err := queryInt(r, "hour")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	t, err := s.weather.TemperatureForHour(r.Context(), hour)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, temperatureResponse{Hour: hour, Temperature: t})
}

func (s *Server) handleSunEvent(w http.ResponseWriter, r *http.Request) {
	if !s.requireWeather(w) {
		return
	}
	event, err := queryString(r, "event")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	hour, err := s.weather.SunriseSunsetHour(r.Context(), event)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sunEventResponse{Event: event, Hour: hour})
}

func (s *Server) handleWind(w http.ResponseWriter, r *http.Request) {
	if !s.requireWeather(w) {
		return
	}
	hour, err := queryInt(r, "hour")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	reading, err := s.weather.WindForHour(r.Context(), hour)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, windResponse{StartHour: hour, EndHour: hour, Wind: reading})
}

func (s *Server) handleMaxWind(w http.ResponseWriter, r *http.Request) {
	if !s.requireWeather(w) {
		return
	}
	startHour, err := queryInt(r, "start_hour")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	endHour, err := queryInt(r, "end_hour")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	reading, err := s.weather.MaxWindBetween(r.Context(), startHour, endHour)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, windResponse{StartHour: startHour, EndHour: endHour, Wind: reading})
}
