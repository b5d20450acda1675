// Package geo holds the GPS coordinate type shared by houses and located values.
package geo

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCoordinate is returned when latitude or longitude is out of range.
var ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates and returns a Coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks latitude is within [-90, 90] and longitude within [-180, 180].
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// LatitudeString formats the latitude for query parameters.
func (c Coordinate) LatitudeString() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

// LongitudeString formats the longitude for query parameters.
func (c Coordinate) LongitudeString() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
