// Package ingest accepts sensor readings published over MQTT.
//
// Each message on envsense/sensors/{kind}/reading carries a flat JSON
// object of numeric readings, for example {"dust_concentration": 35.5}.
// The kind is taken from the topic, and the values go through the same
// sensor.Recorder the HTTP endpoints use.
package ingest
