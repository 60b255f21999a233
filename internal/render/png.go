package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// PNG renders all unit groups as vertically stacked panels of one image.
type PNG struct {
	opts   Options
	logger Logger
}

// Extension implements Renderer.
func (r *PNG) Extension() string { return ".png" }

// Render implements Renderer. It writes exactly one file, output.
func (r *PNG) Render(g *sensorlog.Grouping, output string) ([]string, error) {
	if err := checkGrouping(g); err != nil {
		return nil, err
	}

	palette := NewPalette()
	plots := make([][]*plot.Plot, len(g.Groups))
	for i, group := range g.Groups {
		p, err := r.panel(g.Axis, group, palette)
		if err != nil {
			return nil, fmt.Errorf("building %q panel: %w", group.Unit, err)
		}
		if i == 0 {
			p.Title.Text = Title
		}
		if i == len(g.Groups)-1 {
			p.X.Label.Text = XAxisLabel
		}
		plots[i] = []*plot.Plot{p}
	}

	width := vg.Points(float64(r.opts.Width))
	height := vg.Points(float64(r.opts.Height * len(g.Groups)))
	img := vgimg.New(width, height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := createFile(output)
	if err != nil {
		return nil, err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close() //nolint:errcheck // Write error takes precedence
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", output, err)
	}

	r.logger.Debug("png written", "path", output, "groups", len(g.Groups))
	return []string{output}, nil
}

// panel draws one unit group. Each series is split at NaN gaps into several
// plotter.Line values sharing one legend entry.
func (r *PNG) panel(axis []int64, group sensorlog.UnitGroup, palette *Palette) (*plot.Plot, error) {
	palette.Reset()

	p := plot.New()
	p.Y.Label.Text = YAxisLabel(group.Unit)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for _, series := range group.Series {
		_, colour := palette.Next()

		segs := segments(axis, series.Samples)
		if len(segs) == 0 {
			r.logger.Warn("series has no samples to draw", "column", series.Column)
			continue
		}

		for i, seg := range segs {
			xys := make(plotter.XYs, len(seg.xs))
			for j := range seg.xs {
				xys[j].X = seg.xs[j]
				xys[j].Y = seg.ys[j]
			}

			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", series.Column, err)
			}
			line.Color = colour
			line.Width = vg.Points(1)
			p.Add(line)

			if i == 0 {
				p.Legend.Add(series.Label(), line)
			}
		}
	}

	return p, nil
}
