package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// SVG renders every unit group to its own SVG file.
//
// For output "run.svg" the files are "run-1.svg", "run-2.svg", ... in group
// order. Missing samples are left out, so a line bridges the gap.
type SVG struct {
	opts   Options
	logger Logger
}

// Extension implements Renderer.
func (r *SVG) Extension() string { return ".svg" }

// Render implements Renderer.
func (r *SVG) Render(g *sensorlog.Grouping, output string) ([]string, error) {
	if err := checkGrouping(g); err != nil {
		return nil, err
	}

	palette := NewPalette()
	xRange := axisRange(g.Axis)

	var written []string
	for i, group := range g.Groups {
		ch, ok := r.chart(xRange, g.Axis, group, palette)
		if !ok {
			r.logger.Warn("unit group has no samples to draw", "unit", group.Unit)
			continue
		}

		path := groupPath(output, i+1)
		if err := writeChart(ch, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	r.logger.Debug("svg written", "files", len(written))
	return written, nil
}

func (r *SVG) chart(xRange *chart.ContinuousRange, axis []int64, group sensorlog.UnitGroup, palette *Palette) (*chart.Chart, bool) {
	palette.Reset()

	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, s := range group.Series {
		_, colour := palette.Next()

		var xs, ys []float64
		for _, seg := range segments(axis, s.Samples) {
			xs = append(xs, seg.xs...)
			ys = append(ys, seg.ys...)
		}
		if len(xs) == 0 {
			continue
		}
		for _, y := range ys {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}

		series = append(series, chart.ContinuousSeries{
			Name:    s.Label(),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 1.5,
				StrokeColor: drawing.Color{R: colour.R, G: colour.G, B: colour.B, A: colour.A},
			},
		})
	}
	if len(series) == 0 {
		return nil, false
	}
	if hi <= lo {
		lo, hi = lo-1, hi+1
	}

	ch := &chart.Chart{
		Title:  Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: XAxisLabel, Range: xRange},
		YAxis:  chart.YAxis{Name: YAxisLabel(group.Unit), Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, true
}

// axisRange returns the x range for the shared time axis, widened to one
// second when the log holds a single sample.
func axisRange(axis []int64) *chart.ContinuousRange {
	if len(axis) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := float64(axis[0]), float64(axis[len(axis)-1])
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// groupPath inserts "-n" before the extension of output.
func groupPath(output string, n int) string {
	ext := ".svg"
	base := strings.TrimSuffix(output, ext)
	return fmt.Sprintf("%s-%d%s", base, n, ext)
}

func writeChart(ch *chart.Chart, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := ch.Render(chart.SVG, f); err != nil {
		f.Close() //nolint:errcheck // Render error takes precedence
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
