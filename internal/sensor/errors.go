package sensor

import (
	"errors"
	"fmt"
)

// Domain-specific errors for sensor readings.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownSensor is returned for a sensor kind that is not in the catalog.
	ErrUnknownSensor = errors.New("sensor: unknown sensor")

	// ErrMissingField is returned when a required reading is absent.
	ErrMissingField = errors.New("sensor: missing field")

	// ErrOutOfRange is returned when a reading falls outside its accepted range.
	ErrOutOfRange = errors.New("sensor: value out of range")

	// ErrInvalidValue is returned when a reading is not a finite number.
	ErrInvalidValue = errors.New("sensor: invalid value")
)

// ValidationError reports a rejected reading. It is always a client error:
// nothing was written.
type ValidationError struct {
	Sensor Kind
	Field  string
	Value  float64
	Min    float64
	Max    float64
	Err    error
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrOutOfRange):
		return fmt.Sprintf("%s: %s=%v outside [%v, %v]", e.Err, e.Field, e.Value, e.Min, e.Max)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Err, e.Sensor)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a rejected reading rather than a
// storage failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
