package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/smarthome-core/internal/geo"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20 // 1 MB
)

// Endpoint paths relative to the service base URL.
const (
	pathTemperature = "/InstantaneousTemperature"
	pathSun         = "/SunriseOrSunsetTime"
	pathWind        = "/InstantaneousWindSpeedAndDirection"
	pathMaxWind     = "/MaximumWindSpeedAndDirectionOverAPeriod"
)

// HTTPGateway calls the weather service over HTTP.
//
// Thread Safety: safe for concurrent use.
type HTTPGateway struct {
	url        string
	httpClient *http.Client
}

// NewHTTPGateway creates a gateway for the service at baseURL. A zero
// timeout falls back to 10 seconds.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPGateway{
		url:        strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InstantaneousTemperature returns the outdoor temperature for a local hour.
func (g *HTTPGateway) InstantaneousTemperature(ctx context.Context, group string, at geo.Coordinate, hour int) (Reading, error) {
	params := baseParams(group, at)
	params.Set("hour", strconv.Itoa(hour))
	return g.get(ctx, pathTemperature, params)
}

// SunriseSunset returns the hour of a solar event.
func (g *HTTPGateway) SunriseSunset(ctx context.Context, group string, at geo.Coordinate, event Event) (Reading, error) {
	params := baseParams(group, at)
	params.Set("option", string(event))
	return g.get(ctx, pathSun, params)
}

// InstantaneousWind returns the wind speed and direction for a local hour.
func (g *HTTPGateway) InstantaneousWind(ctx context.Context, group string, at geo.Coordinate, hour int) (Reading, error) {
	params := baseParams(group, at)
	params.Set("hour", strconv.Itoa(hour))
	return g.get(ctx, pathWind, params)
}

// MaximumWind returns the strongest wind between two local hours.
func (g *HTTPGateway) MaximumWind(ctx context.Context, group string, at geo.Coordinate, startHour, endHour int) (Reading, error) {
	params := baseParams(group, at)
	params.Set("hourStart", strconv.Itoa(startHour))
	params.Set("hourEnd", strconv.Itoa(endHour))
	return g.get(ctx, pathMaxWind, params)
}

func baseParams(group string, at geo.Coordinate) url.Values {
	params := url.Values{}
	params.Set("groupNumber", group)
	params.Set("latitude", at.LatitudeString())
	params.Set("longitude", at.LongitudeString())
	return params
}

// get issues a GET request and decodes the Reading in the response body.
func (g *HTTPGateway) get(ctx context.Context, path string, params url.Values) (Reading, error) {
	if g == nil || g.url == "" {
		return Reading{}, ErrNotConfigured
	}

	endpoint := g.url + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Reading{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Reading{}, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: %s returned HTTP %d", ErrRequestFailed, path, resp.StatusCode)
	}

	var r Reading
	if err := json.Unmarshal(body, &r); err != nil {
		return Reading{}, fmt.Errorf("%w: %s: %w", ErrBadResponse, path, err)
	}
	return r, nil
}
