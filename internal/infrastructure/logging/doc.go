// Package logging provides structured logging for hwlog.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - Text output for terminals (default, on stderr, without timestamps)
//   - JSON output for log collectors, with service and version fields
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
// Logging is configured via the LoggingConfig in the config file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0", os.Stdout, os.Stderr)
//	logger.Info("log ingested", "samples", 3600)
//	logger.Warn("layout not found", "error", err)
//
// # Security
//
// Never log secrets, tokens, or passwords (InfluxDB token, MQTT password).
package logging
