// Package influxdb reads recent sensor points back from InfluxDB.
//
// Writes go through the line-protocol client in package tsdb. This package
// wraps the official influxdb-client-go v2 library for the read side: the
// GET endpoints ask it for the latest points of one measurement, and the
// health endpoint pings the server through it.
//
// # Usage
//
//	reader, err := influxdb.New(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // GET endpoints return empty lists
//	}
//	defer reader.Close()
//
//	points, err := reader.Latest(ctx, "dust_sensor", []string{"dust_concentration"}, 10)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package influxdb
