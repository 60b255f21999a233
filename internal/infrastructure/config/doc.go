// Package config handles loading and validating hwlog configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (HWLOG_*)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via
//     environment variables rather than committed config files
//
// Usage:
//
//	cfg, err := config.Load("hwlog.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Ingest.DateFormat)
package config
