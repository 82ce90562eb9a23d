package influxdb

import "errors"

// Sentinel errors for InfluxDB query operations.
//
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // Serve an empty result
//	}
var (
	// ErrDisabled indicates the query reader is turned off in configuration.
	ErrDisabled = errors.New("influxdb: query reader disabled in configuration")

	// ErrNotConnected indicates the reader has been closed.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrQueryFailed indicates a Flux query could not be executed or decoded.
	ErrQueryFailed = errors.New("influxdb: query failed")
)
