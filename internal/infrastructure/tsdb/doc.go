// Package tsdb writes sensor points to an InfluxDB v2 compatible backend.
//
// It encodes points as InfluxDB line protocol and posts them to
// /api/v2/write using only net/http.
//
// # Usage
//
//	client, err := tsdb.New(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.WritePoint(ctx, "dht11_sensor",
//	    []tsdb.Tag{{Key: "sensor_id", Value: "DHT11"}},
//	    []tsdb.Field{{Key: "temperature", Value: 21.5}, {Key: "humidity", Value: 48}})
//
// # Wire Format
//
// One line per request, for example:
//
//	dust_sensor,sensor_id=dust_sensor dust_concentration=23.5 1700000000000000000
//
// Tags and fields keep caller order. Commas, spaces and equals signs in names
// are backslash-escaped; points that cannot be represented are rejected with
// ErrEncoding before any request is built.
//
// # Error Handling
//
// WritePoint is synchronous and returns a *WriteError distinguishing
// encoding failures, transport failures and backend rejections. Nothing is
// retried.
//
// # Thread Safety
//
// A Client holds no mutable state beyond the http.Client connection pool and
// may be shared by any number of goroutines.
package tsdb
