package sensor

import (
	"github.com/nerrad567/envsense-core/internal/infrastructure/tsdb"
)

// Kind identifies a sensor type.
type Kind string

// Supported sensor kinds.
const (
	KindDHT11 Kind = "dht11"
	KindSound Kind = "sound"
	KindDust  Kind = "dust"
)

// FieldSpec describes one reading a sensor reports and its accepted range.
// Both bounds are inclusive.
type FieldSpec struct {
	Name string
	Unit string
	Min  float64
	Max  float64
}

// Sensor binds a sensor kind to its destination series.
type Sensor struct {
	Kind        Kind
	Measurement string
	SensorID    string

	// Route is the HTTP path segment used by the ingestion endpoints.
	Route string

	// Fields lists readings in wire order.
	Fields []FieldSpec
}

// Tags returns the series identity tags for this sensor.
func (s Sensor) Tags() []tsdb.Tag {
	return []tsdb.Tag{{Key: "sensor_id", Value: s.SensorID}}
}

// FieldNames returns the field names in wire order.
func (s Sensor) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Catalog of known sensors.
var (
	DHT11 = Sensor{
		Kind:        KindDHT11,
		Measurement: "dht11_sensor",
		SensorID:    "DHT11",
		Route:       "humidity",
		Fields: []FieldSpec{
			{Name: "temperature", Unit: "°C", Min: -40, Max: 80},
			{Name: "humidity", Unit: "%", Min: 0, Max: 100},
		},
	}

	Sound = Sensor{
		Kind:        KindSound,
		Measurement: "sound_sensor",
		SensorID:    "SPH0645",
		Route:       "sound",
		Fields: []FieldSpec{
			{Name: "sound_level", Unit: "dB", Min: -60, Max: 120},
		},
	}

	Dust = Sensor{
		Kind:        KindDust,
		Measurement: "dust_sensor",
		SensorID:    "dust_sensor",
		Route:       "dust",
		Fields: []FieldSpec{
			{Name: "dust_concentration", Unit: "µg/m³", Min: 0, Max: 1000},
		},
	}
)

// All returns every known sensor in a stable order.
func All() []Sensor {
	return []Sensor{DHT11, Sound, Dust}
}

// Lookup finds a sensor by kind.
func Lookup(kind Kind) (Sensor, bool) {
	for _, s := range All() {
		if s.Kind == kind {
			return s, true
		}
	}
	return Sensor{}, false
}
