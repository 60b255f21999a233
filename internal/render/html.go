package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// missingValue is how echarts marks a gap in a line series.
const missingValue = "-"

// seriesMarker appears once per line series in a rendered page.
const seriesMarker = `"type":"line"`

// HTML renders one interactive line chart per unit group on a single page.
type HTML struct {
	opts   Options
	logger Logger
}

// Extension implements Renderer.
func (r *HTML) Extension() string { return ".html" }

// Render implements Renderer. It writes exactly one file, output.
func (r *HTML) Render(g *sensorlog.Grouping, output string) ([]string, error) {
	if err := checkGrouping(g); err != nil {
		return nil, err
	}

	page := components.NewPage()
	page.PageTitle = Title

	xLabels := make([]string, len(g.Axis))
	for i, s := range g.Axis {
		xLabels[i] = strconv.FormatInt(s, 10)
	}

	palette := NewPalette()
	for _, group := range g.Groups {
		page.AddCharts(r.chart(xLabels, group, palette))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", output, err)
	}
	if err := checkPage(buf.Bytes(), g.SeriesCount()); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", output, err)
	}

	f, err := createFile(output)
	if err != nil {
		return nil, err
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close() //nolint:errcheck // Write error takes precedence
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", output, err)
	}

	r.logger.Debug("html written", "path", output, "groups", len(g.Groups))
	return []string{output}, nil
}

func (r *HTML) chart(xLabels []string, group sensorlog.UnitGroup, palette *Palette) *charts.Line {
	palette.Reset()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    Title,
			Subtitle: YAxisLabel(group.Unit),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: XAxisLabel,
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: YAxisLabel(group.Unit),
			Type: "value",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", r.opts.Width),
			Height: fmt.Sprintf("%dpx", r.opts.Height),
		}),
	)
	line.SetXAxis(xLabels)

	for _, series := range group.Series {
		_, colour := palette.Next()

		data := make([]opts.LineData, len(series.Samples))
		for i, v := range series.Samples {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				data[i] = opts.LineData{Value: missingValue}
				continue
			}
			data[i] = opts.LineData{Value: v}
		}

		line.AddSeries(series.Label(), data,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: hex(colour),
				Width: 1.5,
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: hex(colour),
			}),
		)
	}

	return line
}

// checkPage verifies that every series made it into the page. go-echarts
// drops a chart's options silently when they fail to encode.
func checkPage(page []byte, series int) error {
	if got := bytes.Count(page, []byte(seriesMarker)); got < series {
		return fmt.Errorf("%w: page holds %d of %d series", ErrIncompleteChart, got, series)
	}
	return nil
}
