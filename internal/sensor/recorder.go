package sensor

import (
	"context"
	"fmt"
	"math"

	"github.com/nerrad567/envsense-core/internal/infrastructure/tsdb"
)

// PointWriter persists a single point. Satisfied by *tsdb.Client.
type PointWriter interface {
	WritePoint(ctx context.Context, measurement string, tags []tsdb.Tag, fields []tsdb.Field) error
}

// WriteObserver is told about every attempted write. Satisfied by *metrics.Metrics.
type WriteObserver interface {
	ObserveWrite(measurement string, err error)
}

// Logger defines the logging interface used by the recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Validate checks raw values against the sensor's ranges and returns them
// as tsdb fields in wire order. Extra keys in values are ignored.
func (s Sensor) Validate(values map[string]float64) ([]tsdb.Field, error) {
	fields := make([]tsdb.Field, 0, len(s.Fields))
	for _, fd := range s.Fields {
		v, ok := values[fd.Name]
		if !ok {
			return nil, &ValidationError{Sensor: s.Kind, Field: fd.Name, Err: ErrMissingField}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ValidationError{Sensor: s.Kind, Field: fd.Name, Value: v, Err: ErrInvalidValue}
		}
		if v < fd.Min || v > fd.Max {
			return nil, &ValidationError{
				Sensor: s.Kind,
				Field:  fd.Name,
				Value:  v,
				Min:    fd.Min,
				Max:    fd.Max,
				Err:    ErrOutOfRange,
			}
		}
		fields = append(fields, tsdb.Field{Key: fd.Name, Value: v})
	}
	return fields, nil
}

// Recorder is the single validate-then-write path shared by the HTTP
// endpoints, the MQTT subscriber and the synthetic generator.
//
// Thread Safety: safe for concurrent use if the writer is.
type Recorder struct {
	writer   PointWriter
	observer WriteObserver
	logger   Logger
}

// NewRecorder creates a Recorder writing through w.
func NewRecorder(w PointWriter) *Recorder {
	return &Recorder{writer: w, logger: noopLogger{}}
}

// SetLogger sets the logger for write outcomes.
func (r *Recorder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// SetObserver sets the write observer (metrics).
func (r *Recorder) SetObserver(o WriteObserver) {
	r.observer = o
}

// Record validates values for the given sensor kind and writes one point.
//
// Returns:
//   - *ValidationError (ErrUnknownSensor, ErrMissingField, ErrOutOfRange,
//     ErrInvalidValue) when the reading is rejected; nothing is written
//   - the writer's error when persistence fails
//   - nil on success
func (r *Recorder) Record(ctx context.Context, kind Kind, values map[string]float64) error {
	s, ok := Lookup(kind)
	if !ok {
		return &ValidationError{Sensor: kind, Err: ErrUnknownSensor}
	}
	return r.RecordSensor(ctx, s, values)
}

// RecordSensor is Record for an already resolved sensor.
func (r *Recorder) RecordSensor(ctx context.Context, s Sensor, values map[string]float64) error {
	fields, err := s.Validate(values)
	if err != nil {
		return err
	}

	err = r.writer.WritePoint(ctx, s.Measurement, s.Tags(), fields)
	if r.observer != nil {
		r.observer.ObserveWrite(s.Measurement, err)
	}
	if err != nil {
		r.logger.Warn("point write failed", "measurement", s.Measurement, "error", err)
		return fmt.Errorf("writing %s: %w", s.Measurement, err)
	}

	r.logger.Debug("point written", "measurement", s.Measurement, "fields", len(fields))
	return nil
}
