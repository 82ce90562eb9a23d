package tsdb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Tag is an indexed key/value pair identifying the source of a point.
type Tag struct {
	Key   string
	Value string
}

// Field is a numeric key/value pair holding a reading.
type Field struct {
	Key   string
	Value float64
}

// Encode formats a point as a single InfluxDB line protocol line.
//
// Format: measurement,tag1=val1,tag2=val2 field1=val1,field2=val2 timestamp_ns
//
// Tags and fields are emitted in the order given. Reserved characters are
// backslash-escaped: comma and space in the measurement; comma, equals sign
// and space in tag keys, tag values and field keys. Field values are plain
// decimal floats. The returned line has no trailing newline.
//
// Returns an error wrapping ErrEncoding when the point cannot be represented:
// no fields, an empty measurement or key, an empty tag value, a measurement
// starting with '#', a control character or invalid UTF-8 in any name, a
// backslash at the end of a name or directly before a reserved character, or
// a NaN/Inf field value.
func Encode(measurement string, tags []Tag, fields []Field, timestampNanos int64) (string, error) {
	if err := validatePoint(measurement, tags, fields); err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString(escapeMeasurement(measurement))

	for _, tag := range tags {
		b.WriteByte(',')
		b.WriteString(escapeKey(tag.Key))
		b.WriteByte('=')
		b.WriteString(escapeKey(tag.Value))
	}

	b.WriteByte(' ')
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeKey(field.Key))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(field.Value, 'f', -1, 64))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(timestampNanos, 10))

	return b.String(), nil
}

// validatePoint rejects points that line protocol cannot carry.
func validatePoint(measurement string, tags []Tag, fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: point %q has no fields", ErrEncoding, measurement)
	}
	if measurement == "" {
		return fmt.Errorf("%w: measurement is empty", ErrEncoding)
	}
	if measurement[0] == '#' {
		return fmt.Errorf("%w: measurement %q starts a comment", ErrEncoding, measurement)
	}
	if err := checkName("measurement", measurement, measurementReserved); err != nil {
		return err
	}

	for _, tag := range tags {
		if tag.Key == "" || tag.Value == "" {
			return fmt.Errorf("%w: tag %q=%q has an empty key or value", ErrEncoding, tag.Key, tag.Value)
		}
		if err := checkName("tag key", tag.Key, keyReserved); err != nil {
			return err
		}
		if err := checkName("tag value", tag.Value, keyReserved); err != nil {
			return err
		}
	}

	for _, field := range fields {
		if field.Key == "" {
			return fmt.Errorf("%w: field key is empty", ErrEncoding)
		}
		if err := checkName("field key", field.Key, keyReserved); err != nil {
			return err
		}
		if math.IsNaN(field.Value) || math.IsInf(field.Value, 0) {
			return fmt.Errorf("%w: field %q has non-finite value %v", ErrEncoding, field.Key, field.Value)
		}
	}

	return nil
}

// Characters that are backslash-escaped when written.
const (
	keyReserved         = ",= "
	measurementReserved = ", "
)

// checkName reports names that would not decode back to themselves.
//
// A trailing backslash would escape the delimiter that follows the name, and
// a backslash before a reserved character is read differently by different
// parsers once that character is escaped. Control characters end a token.
func checkName(what, s, reserved string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s %q is not valid UTF-8", ErrEncoding, what, s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7f {
			return fmt.Errorf("%w: %s %q contains a control character", ErrEncoding, what, s)
		}
		if c != '\\' {
			continue
		}
		if i == len(s)-1 {
			return fmt.Errorf("%w: %s %q ends with a backslash", ErrEncoding, what, s)
		}
		if strings.IndexByte(reserved, s[i+1]) >= 0 {
			return fmt.Errorf("%w: %s %q has a backslash before %q", ErrEncoding, what, s, s[i+1])
		}
	}
	return nil
}

var (
	keyEscaper         = strings.NewReplacer(",", `\,`, "=", `\=`, " ", `\ `)
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
)

// escapeKey escapes tag keys, tag values and field keys.
func escapeKey(s string) string {
	return keyEscaper.Replace(s)
}

// escapeMeasurement escapes measurement names. An equals sign is legal there.
func escapeMeasurement(s string) string {
	return measurementEscaper.Replace(s)
}
