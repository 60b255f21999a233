package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatSVG  = "svg"
)

// Chart text shared by all renderers.
const (
	Title      = "Logging data"
	XAxisLabel = "Time [s]"
)

const (
	defaultWidth  = 1200
	defaultHeight = 400

	// dirPermissions is the permission mode for created output directories.
	dirPermissions = 0750
)

// Renderer draws a Grouping to one or more files.
type Renderer interface {
	// Render writes the charts for g next to output and returns the paths
	// of every file written.
	Render(g *sensorlog.Grouping, output string) ([]string, error)

	// Extension returns the file extension of the primary output, with dot.
	Extension() string
}

// Options configures a renderer.
type Options struct {
	// Width of a chart in pixels.
	Width int

	// Height of one unit group panel in pixels.
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	return o
}

// Logger defines the logging interface used by renderers.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// New returns the renderer for format.
//
// Parameters:
//   - format: One of FormatPNG, FormatHTML, FormatSVG (case-insensitive)
//   - opts: Chart dimensions; zero values select defaults
//   - logger: Diagnostics sink (nil discards them)
//
// Returns:
//   - Renderer: Renderer ready for use
//   - error: ErrUnknownFormat for anything else
func New(format string, opts Options, logger Logger) (Renderer, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	opts = opts.withDefaults()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatPNG:
		return &PNG{opts: opts, logger: logger}, nil
	case FormatHTML:
		return &HTML{opts: opts, logger: logger}, nil
	case FormatSVG:
		return &SVG{opts: opts, logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// YAxisLabel returns the y axis label for a unit group.
func YAxisLabel(unit string) string {
	return fmt.Sprintf("Sensor data [%s]", unit)
}

// OutputPath derives an output file from a log file path: the log's
// directory and base name with ext in place of its extension.
func OutputPath(logFile, ext string) string {
	base := strings.TrimSuffix(logFile, filepath.Ext(logFile))
	return base + ext
}

// checkGrouping rejects groupings with no series.
func checkGrouping(g *sensorlog.Grouping) error {
	if g == nil || g.SeriesCount() == 0 {
		return ErrNothingToRender
	}
	return nil
}

// createFile creates path and any missing parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

// segment is a run of consecutive non-NaN samples.
type segment struct {
	xs []float64
	ys []float64
}

// segments splits samples at NaN gaps. Missing samples never connect.
// Infinite samples are treated as missing.
func segments(axis []int64, samples []float64) []segment {
	var out []segment
	var cur segment

	for i, v := range samples {
		if i >= len(axis) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur.xs) > 0 {
				out = append(out, cur)
				cur = segment{}
			}
			continue
		}
		cur.xs = append(cur.xs, float64(axis[i]))
		cur.ys = append(cur.ys, v)
	}
	if len(cur.xs) > 0 {
		out = append(out, cur)
	}
	return out
}
