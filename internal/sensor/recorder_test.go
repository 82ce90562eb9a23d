package sensor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/nerrad567/envsense-core/internal/infrastructure/tsdb"
)

// writeCall captures one WritePoint invocation.
type writeCall struct {
	measurement string
	tags        []tsdb.Tag
	fields      []tsdb.Field
}

// fakeWriter records writes and returns err for every call.
type fakeWriter struct {
	mu    sync.Mutex
	calls []writeCall
	err   error
}

func (f *fakeWriter) WritePoint(_ context.Context, measurement string, tags []tsdb.Tag, fields []tsdb.Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, writeCall{measurement: measurement, tags: tags, fields: fields})
	return f.err
}

type fakeObserver struct {
	measurements []string
	errs         []error
}

func (o *fakeObserver) ObserveWrite(measurement string, err error) {
	o.measurements = append(o.measurements, measurement)
	o.errs = append(o.errs, err)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		kind        Kind
		measurement string
		sensorID    string
		fields      []string
	}{
		{KindDHT11, "dht11_sensor", "DHT11", []string{"temperature", "humidity"}},
		{KindSound, "sound_sensor", "SPH0645", []string{"sound_level"}},
		{KindDust, "dust_sensor", "dust_sensor", []string{"dust_concentration"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s, ok := Lookup(tt.kind)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.kind)
			}
			if s.Measurement != tt.measurement {
				t.Errorf("Measurement = %q, want %q", s.Measurement, tt.measurement)
			}
			if s.SensorID != tt.sensorID {
				t.Errorf("SensorID = %q, want %q", s.SensorID, tt.sensorID)
			}
			names := s.FieldNames()
			if len(names) != len(tt.fields) {
				t.Fatalf("FieldNames() = %v, want %v", names, tt.fields)
			}
			for i := range names {
				if names[i] != tt.fields[i] {
					t.Errorf("FieldNames()[%d] = %q, want %q", i, names[i], tt.fields[i])
				}
			}
		})
	}

	if _, ok := Lookup("co2"); ok {
		t.Error("Lookup(co2) found, want not found")
	}
}

func TestSensor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sensor  Sensor
		values  map[string]float64
		wantErr error
	}{
		{
			name:   "dht11 in range",
			sensor: DHT11,
			values: map[string]float64{"temperature": 21.5, "humidity": 40},
		},
		{
			name:   "dht11 inclusive bounds",
			sensor: DHT11,
			values: map[string]float64{"temperature": -40, "humidity": 100},
		},
		{
			name:    "dht11 temperature too high",
			sensor:  DHT11,
			values:  map[string]float64{"temperature": 80.1, "humidity": 40},
			wantErr: ErrOutOfRange,
		},
		{
			name:    "dht11 humidity negative",
			sensor:  DHT11,
			values:  map[string]float64{"temperature": 20, "humidity": -1},
			wantErr: ErrOutOfRange,
		},
		{
			name:    "dht11 missing humidity",
			sensor:  DHT11,
			values:  map[string]float64{"temperature": 20},
			wantErr: ErrMissingField,
		},
		{
			name:    "sound below range",
			sensor:  Sound,
			values:  map[string]float64{"sound_level": -61},
			wantErr: ErrOutOfRange,
		},
		{
			name:   "sound in range",
			sensor: Sound,
			values: map[string]float64{"sound_level": 120},
		},
		{
			name:    "dust NaN",
			sensor:  Dust,
			values:  map[string]float64{"dust_concentration": math.NaN()},
			wantErr: ErrInvalidValue,
		},
		{
			name:   "dust ignores extra keys",
			sensor: Dust,
			values: map[string]float64{"dust_concentration": 23.5, "noise": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := tt.sensor.Validate(tt.values)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				if !IsValidation(err) {
					t.Error("IsValidation() = false for a validation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if len(fields) != len(tt.sensor.Fields) {
				t.Fatalf("Validate() returned %d fields, want %d", len(fields), len(tt.sensor.Fields))
			}
			for i, fd := range tt.sensor.Fields {
				if fields[i].Key != fd.Name || fields[i].Value != tt.values[fd.Name] {
					t.Errorf("field[%d] = %+v, want %s=%v", i, fields[i], fd.Name, tt.values[fd.Name])
				}
			}
		})
	}
}

func TestRecorder_Record(t *testing.T) {
	w := &fakeWriter{}
	obs := &fakeObserver{}
	r := NewRecorder(w)
	r.SetObserver(obs)

	err := r.Record(context.Background(), KindDHT11, map[string]float64{"humidity": 48, "temperature": 21.5})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(w.calls) != 1 {
		t.Fatalf("writes = %d, want 1", len(w.calls))
	}
	call := w.calls[0]
	if call.measurement != "dht11_sensor" {
		t.Errorf("measurement = %q, want dht11_sensor", call.measurement)
	}
	if len(call.tags) != 1 || call.tags[0] != (tsdb.Tag{Key: "sensor_id", Value: "DHT11"}) {
		t.Errorf("tags = %v, want [sensor_id=DHT11]", call.tags)
	}
	wantFields := []tsdb.Field{{Key: "temperature", Value: 21.5}, {Key: "humidity", Value: 48}}
	if len(call.fields) != 2 || call.fields[0] != wantFields[0] || call.fields[1] != wantFields[1] {
		t.Errorf("fields = %v, want %v", call.fields, wantFields)
	}
	if len(obs.measurements) != 1 || obs.errs[0] != nil {
		t.Errorf("observer saw %v / %v, want one successful write", obs.measurements, obs.errs)
	}
}

func TestRecorder_RejectsWithoutWriting(t *testing.T) {
	w := &fakeWriter{}
	obs := &fakeObserver{}
	r := NewRecorder(w)
	r.SetObserver(obs)

	err := r.Record(context.Background(), KindSound, map[string]float64{"sound_level": 500})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Record() error = %v, want ErrOutOfRange", err)
	}
	if len(w.calls) != 0 {
		t.Errorf("writes = %d, want 0", len(w.calls))
	}
	if len(obs.measurements) != 0 {
		t.Errorf("observer called %d times, want 0", len(obs.measurements))
	}
}

func TestRecorder_UnknownSensor(t *testing.T) {
	r := NewRecorder(&fakeWriter{})

	err := r.Record(context.Background(), "co2", map[string]float64{"ppm": 400})
	if !errors.Is(err, ErrUnknownSensor) {
		t.Fatalf("Record() error = %v, want ErrUnknownSensor", err)
	}
	if !IsValidation(err) {
		t.Error("IsValidation() = false for unknown sensor")
	}
}

func TestRecorder_WriteFailureIsNotValidation(t *testing.T) {
	writeErr := &tsdb.WriteError{Kind: tsdb.ErrRejected, StatusCode: 500, Body: "boom"}
	w := &fakeWriter{err: writeErr}
	obs := &fakeObserver{}
	r := NewRecorder(w)
	r.SetObserver(obs)

	err := r.Record(context.Background(), KindDust, map[string]float64{"dust_concentration": 23.5})
	if err == nil {
		t.Fatal("Record() error = nil, want write failure")
	}
	if IsValidation(err) {
		t.Error("IsValidation() = true for a storage failure")
	}
	if !errors.Is(err, tsdb.ErrRejected) {
		t.Errorf("Record() error = %v, want it to wrap tsdb.ErrRejected", err)
	}
	if len(obs.errs) != 1 || obs.errs[0] == nil {
		t.Errorf("observer errs = %v, want one failure", obs.errs)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Sensor: KindDHT11, Field: "temperature", Value: 90, Min: -40, Max: 80, Err: ErrOutOfRange}
	want := "sensor: value out of range: temperature=90 outside [-40, 80]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
