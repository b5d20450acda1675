// Package influxdb mirrors ingested sensor values to InfluxDB.
//
// SQLite remains the store the core reconciles against. InfluxDB receives a
// copy of every ingested value as a "sensor_values" point so dashboards can
// chart the raw series. Writes are non-blocking and batched by the client
// library; failures arrive asynchronously through SetOnError.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSensorValue(influxdb.SensorPoint{
//	    SensorID:      "s-living-temp",
//	    DeviceID:      "dev-living-thermostat",
//	    Functionality: "TemperatureCelsius",
//	    Variant:       "instant",
//	    Measurement:   "21.5",
//	    Unit:          "°C",
//	    Time:          time.Now(),
//	})
package influxdb
