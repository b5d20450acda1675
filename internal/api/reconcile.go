package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smarthome-core/internal/reconcile"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

type measurementsResponse struct {
	DeviceID     string                     `json:"device_id"`
	Start        time.Time                  `json:"start"`
	End          time.Time                  `json:"end"`
	Measurements map[string][]value.Reading `json:"measurements"`
}

type lastMeasurementResponse struct {
	DeviceID      string `json:"device_id"`
	Functionality string `json:"functionality"`
	Measurement   string `json:"measurement"`
}

type peakPowerResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	PeakWatts float64   `json:"peak_watts"`
}

// temperatureDifferenceResponse carries a nil MaxDifference when no pair of
// readings could be compared.
type temperatureDifferenceResponse struct {
	Inside        string    `json:"inside"`
	Outside       string    `json:"outside"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	MaxDifference *float64  `json:"max_difference"`
	Comparable    bool      `json:"comparable"`
}

// handleDeviceMeasurements returns every reading of a device in a window,
// grouped by functionality.
func (s *Server) handleDeviceMeasurements(w http.ResponseWriter, r *http.Request) {
	deviceID := sensor.DeviceID(chi.URLParam(r, "id"))
	start, end, err := queryWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if _, err := s.devices.GetDevice(r.Context(), deviceID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	byFunctionality, err := s.reconciler.AllMeasurementsForDeviceBetween(r.Context(), deviceID, start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make(map[string][]value.Reading, len(byFunctionality))
	for fn, readings := range byFunctionality {
		out[string(fn)] = readings
	}
	writeJSON(w, http.StatusOK, measurementsResponse{
		DeviceID:     string(deviceID),
		Start:        start,
		End:          end,
		Measurements: out,
	})
}

// handleLastMeasurement returns the most recent measurement of a device
// for one functionality.
func (s *Server) handleLastMeasurement(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	fn := chi.URLParam(r, "functionality")

	m, err := s.reconciler.LastMeasurement(r.Context(), sensor.DeviceID(deviceID), sensor.FunctionalityID(fn))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lastMeasurementResponse{
		DeviceID:      deviceID,
		Functionality: fn,
		Measurement:   m,
	})
}

// handlePeakPower returns the peak reconciled power draw in a window and
// announces it on the core event topic.
func (s *Server) handlePeakPower(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	peak, err := s.reconciler.PeakPowerConsumption(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := peakPowerResponse{Start: start, End: end, PeakWatts: peak}
	s.publishEvent(mqtt.EventPeakPower, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleTemperatureDifference compares two temperature sensors.
func (s *Server) handleTemperatureDifference(w http.ResponseWriter, r *http.Request) {
	inside, err := queryString(r, "inside")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	outside, err := queryString(r, "outside")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	start, end, err := queryWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	diff, err := s.reconciler.MaxTemperatureDifference(r.Context(), sensor.ID(inside), sensor.ID(outside), start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, differenceResponse(inside, outside, start, end, diff))
}

// handleWeatherTemperatureDifference compares a temperature sensor with the
// weather service's hourly outdoor temperature.
func (s *Server) handleWeatherTemperatureDifference(w http.ResponseWriter, r *http.Request) {
	inside, err := queryString(r, "inside")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	start, end, err := queryWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	diff, err := s.reconciler.MaxTemperatureDifferenceWithWeather(r.Context(), sensor.ID(inside), start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, differenceResponse(inside, "weather", start, end, diff))
}

func differenceResponse(inside, outside string, start, end time.Time, diff float64) temperatureDifferenceResponse {
	resp := temperatureDifferenceResponse{Inside: inside, Outside: outside, Start: start, End: end}
	if diff != reconcile.NoComparableData {
		resp.MaxDifference = &diff
		resp.Comparable = true
	}
	return resp
}

// publishEvent publishes v on the core event topic. Failures are logged only.
func (s *Server) publishEvent(eventType string, v any) {
	if s.events == nil {
		return
	}
	topic := mqtt.Topics{}.CoreEvent(eventType)
	if err := s.events.PublishJSON(topic, v); err != nil {
		s.logger.Warn("failed to publish core event", "topic", topic, "error", err)
	}
}
