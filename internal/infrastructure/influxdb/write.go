package influxdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// pointTagKeys are the tags set from each sensor value. Site tags may not
// reuse them.
var pointTagKeys = map[string]struct{}{
	"sensor":        {},
	"device":        {},
	"functionality": {},
	"variant":       {},
	"unit":          {},
}

// SensorPoint is one sensor value flattened for the mirror.
type SensorPoint struct {
	SensorID      string
	DeviceID      string
	Functionality string
	Variant       string

	Measurement string
	Unit        string

	// Time is the value's timestamp; for intervals, the interval end.
	Time time.Time

	// Start is set for interval values only.
	Start time.Time

	// HasLocation marks instant-location values.
	HasLocation bool
	Latitude    float64
	Longitude   float64
}

// WriteSensorValue queues p for writing. It is a no-op when disconnected.
func (c *Client) WriteSensorValue(p SensorPoint) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(newSensorPoint(c.measurement, c.siteTags, p))
	c.queued.Add(1)
}

// newSensorPoint builds the line protocol point for p in measurement.
//
// Tags: the site tags, then sensor, device, functionality, variant, unit.
// Fields: raw (always), value (when the measurement is a single number),
// duration_seconds (intervals), latitude and longitude (located values).
func newSensorPoint(measurement string, siteTags map[string]string, p SensorPoint) *write.Point {
	tags := make(map[string]string, len(siteTags)+len(pointTagKeys))
	for k, v := range siteTags {
		tags[k] = v
	}
	tags["sensor"] = p.SensorID
	tags["functionality"] = p.Functionality
	tags["variant"] = p.Variant
	if p.DeviceID != "" {
		tags["device"] = p.DeviceID
	}
	if p.Unit != "" {
		tags["unit"] = p.Unit
	}

	fields := map[string]interface{}{
		"raw": p.Measurement,
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(p.Measurement), 64); err == nil {
		fields["value"] = f
	}
	if !p.Start.IsZero() {
		fields["duration_seconds"] = p.Time.Sub(p.Start).Seconds()
	}
	if p.HasLocation {
		fields["latitude"] = p.Latitude
		fields["longitude"] = p.Longitude
	}

	return write.NewPoint(measurement, tags, fields, p.Time)
}
