// Package logging provides structured logging for envsense-core.
//
// It wraps the standard log/slog package: JSON output for production, text
// output for development, level filtering, and service, version and commit
// fields on every entry.
//
// Configuration:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, logging.Build{Version: version, Commit: commit})
//	logger.Info("point written", "measurement", "dust_sensor")
//
// Never log the backend token; use config.InfluxDBConfig.TokenPrefix.
package logging
