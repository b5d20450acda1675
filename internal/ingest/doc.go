// Package ingest turns sensor value messages from MQTT into stored values.
//
// Each message on smarthome/sensor/{sensor_id}/value is decoded, matched to
// a known sensor, routed to its value variant through the functionality
// table, and saved to that variant's store. When a mirror is configured the
// value is also written to InfluxDB.
//
// Bad messages are counted and dropped without stopping the pipeline.
//
// Payload:
//
//	{
//	  "id": "optional, generated when absent",
//	  "sensor_id": "s-living-temp",
//	  "device_id": "optional, registers an unknown sensor",
//	  "functionality": "optional, registers an unknown sensor",
//	  "measurement": "21.5",
//	  "unit": "°C",
//	  "instant": "2026-03-01T10:00:00Z",
//	  "start": "...", "end": "...",
//	  "latitude": 50.85, "longitude": 4.35
//	}
package ingest
