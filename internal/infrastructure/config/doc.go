// Package config handles loading and validating envsense-core configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The InfluxDB token should be set via INFLUXDB_TOKEN, not committed to the file
//   - Only a short token prefix is ever logged (see InfluxDBConfig.TokenPrefix)
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("ENVSENSE_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.InfluxDB.Bucket)
package config
