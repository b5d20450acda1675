// Package sensor is the directory of devices and the sensors they carry.
//
// A sensor belongs to exactly one device and reports exactly one
// functionality (for example TemperatureCelsius or PowerAverage). The
// reconciliation layer uses the directory to turn a device or functionality
// into the set of sensor IDs whose values it must fetch.
package sensor
