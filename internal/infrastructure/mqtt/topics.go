package mqtt

import "strings"

// TopicPrefix is the root of every envsense topic.
const TopicPrefix = "envsense"

// Topics builds envsense MQTT topic names.
//
//	topics := mqtt.Topics{}
//	topics.SystemStatus()      // "envsense/system/status"
//	topics.AllSensorReadings() // "envsense/sensors/+/reading"
type Topics struct{}

// SystemStatus returns the retained service status topic. The LWT is
// published here too.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// AllSensorReadings returns a wildcard matching the topics devices publish
// readings to, one per sensor kind.
//
// Example match: envsense/sensors/dht11/reading
func (Topics) AllSensorReadings() string {
	return TopicPrefix + "/sensors/+/reading"
}

// ParseSensorReading extracts the sensor kind from a reading topic.
// It reports false for any other topic.
func ParseSensorReading(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[1] != "sensors" || parts[3] != "reading" {
		return "", false
	}
	if parts[2] == "" || parts[2] == "+" || parts[2] == "#" {
		return "", false
	}
	return parts[2], true
}
