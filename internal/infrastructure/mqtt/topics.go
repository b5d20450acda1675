package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes.
const (
	// TopicPrefixSensor is the base for readings published by sensors.
	TopicPrefixSensor = "smarthome/sensor"

	// TopicPrefixCore is the base for topics published by the core.
	TopicPrefixCore = "smarthome/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "smarthome/system"
)

// Core event types.
const (
	EventPeakPower = "peak_power"
)

// Topics builds Smart Home MQTT topics.
//
//	topic := mqtt.Topics{}.SensorValue("s-living-temp")
//	// Returns: "smarthome/sensor/s-living-temp/value"
type Topics struct{}

// SensorValue returns the topic a sensor publishes its readings on.
//
// Example: smarthome/sensor/s-living-temp/value
func (Topics) SensorValue(sensorID string) string {
	return fmt.Sprintf("%s/%s/value", TopicPrefixSensor, sensorID)
}

// CoreEvent returns the topic for events published by the core.
//
// Example: smarthome/core/event/peak_power
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: smarthome/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllSensorValues returns a pattern matching every sensor value topic.
//
// Pattern: smarthome/sensor/+/value
func (Topics) AllSensorValues() string {
	return TopicPrefixSensor + "/+/value"
}

// AllCoreEvents returns a pattern matching all core events.
//
// Pattern: smarthome/core/event/+
func (Topics) AllCoreEvents() string {
	return TopicPrefixCore + "/event/+"
}

// SensorIDFromTopic extracts the sensor ID from a sensor value topic.
// It returns false when topic does not have the smarthome/sensor/{id}/value shape.
func SensorIDFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, TopicPrefixSensor+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/value")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
