// Package sensor holds the sensor catalog and the validate-then-write path.
//
// Each supported sensor maps to one measurement, one sensor_id tag and an
// ordered list of float fields with inclusive accepted ranges:
//
//	dht11  dht11_sensor  sensor_id=DHT11        temperature [-40, 80], humidity [0, 100]
//	sound  sound_sensor  sensor_id=SPH0645      sound_level [-60, 120]
//	dust   dust_sensor   sensor_id=dust_sensor  dust_concentration [0, 1000]
//
// Recorder.Record is used by every producer of readings. A rejected reading
// returns a *ValidationError and nothing is written; any other error comes
// from the storage layer. Callers must keep the two apart (HTTP 4xx vs 5xx).
package sensor
