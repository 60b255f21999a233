package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/nerrad567/hwlog/internal/infrastructure/config"
)

// serviceName is attached to every JSON record as the "service" attribute.
const serviceName = "hwlog"

// Logger wraps slog.Logger for hwlog commands.
//
// It satisfies the small Logger interfaces declared by the domain packages
// (sensorlog, selector, pipeline, mqtt), so one value is passed everywhere.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging section of the config.
//
// Text output is meant for the terminal running hwlog: timestamps are
// dropped and no default fields are added. JSON output is meant for log
// collectors and carries time, service and version on every record.
//
// Parameters:
//   - cfg: Logging configuration from the config file
//   - version: Application version for the JSON "version" field
//   - stdout: Destination when cfg.Output is "stdout"
//   - stderr: Destination otherwise
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string, stdout, stderr io.Writer) *Logger {
	output := stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		output = stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(output, opts).WithAttrs([]slog.Attr{
			slog.String("service", serviceName),
			slog.String("version", version),
		})
	} else {
		opts.ReplaceAttr = dropTime
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// dropTime removes the top-level time attribute from text records.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	runLog := logger.With("run_id", id)
//	runLog.Warn("series export failed", "sink", "tsdb") // includes run_id
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}
