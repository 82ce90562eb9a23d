package influxdb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MaxLatestLimit caps how many points a single Latest call returns.
const MaxLatestLimit = 1000

// Point is one stored reading, with its fields pivoted into a map.
type Point struct {
	Time     time.Time          `json:"time"`
	SensorID string             `json:"sensor_id"`
	Fields   map[string]float64 `json:"fields"`
}

// fluxEscaper escapes a value for use inside a Flux string literal.
var fluxEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `${`, `\${`)

func fluxString(s string) string {
	return `"` + fluxEscaper.Replace(s) + `"`
}

// buildLatestQuery returns a Flux query selecting the newest limit points
// of measurement within window, newest first, one row per timestamp.
func buildLatestQuery(bucket, measurement string, window time.Duration, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", fluxString(bucket))
	fmt.Fprintf(&b, "  |> range(start: -%ds)\n", int64(window/time.Second))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %s)\n", fluxString(measurement))
	b.WriteString("  |> pivot(rowKey: [\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("  |> group()\n")
	b.WriteString("  |> sort(columns: [\"_time\"], desc: true)\n")
	fmt.Fprintf(&b, "  |> limit(n: %d)\n", limit)
	return b.String()
}

// Latest returns up to limit of the most recent points of measurement,
// newest first. Only the named fields are copied out of each row; a field
// missing from a row is left out of that point's map.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - measurement: Measurement name, e.g. "dust_sensor"
//   - fields: Field keys to return
//   - limit: Maximum points; clamped to [1, MaxLatestLimit]
//
// Returns:
//   - []Point: Points found, possibly empty
//   - error: ErrQueryFailed wrapping the cause
func (r *Reader) Latest(ctx context.Context, measurement string, fields []string, limit int) ([]Point, error) {
	if !r.IsConnected() {
		return nil, ErrNotConnected
	}
	limit = max(1, min(limit, MaxLatestLimit))

	queryCtx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	result, err := r.queryAPI.Query(queryCtx, buildLatestQuery(r.bucket, measurement, r.window, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	points := make([]Point, 0, limit)
	for result.Next() {
		rec := result.Record()

		p := Point{
			Time:   rec.Time(),
			Fields: make(map[string]float64, len(fields)),
		}
		if id, ok := rec.ValueByKey("sensor_id").(string); ok {
			p.SensorID = id
		}
		for _, f := range fields {
			if v, ok := rec.ValueByKey(f).(float64); ok {
				p.Fields[f] = v
			}
		}
		points = append(points, p)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	return points, nil
}
