// Package api implements the HTTP API of envsense-core.
//
// Endpoints:
//   - POST /humidity, /sound, /dust: accept one reading as multipart or
//     urlencoded form fields, validate it and write it as one point
//   - GET /humidity, /sound, /dust: return the latest stored readings
//   - GET /health: liveness plus backend checks
//   - GET /metrics: Prometheus exposition
//
// A rejected reading (missing, unparseable or out-of-range field) is a 400.
// A failed write is a 500. Every request gets an X-Request-ID and one
// structured log line.
//
//	server, err := api.New(deps)
//	if err := server.Start(ctx); err != nil {
//	    return err
//	}
//	defer server.Close()
package api
