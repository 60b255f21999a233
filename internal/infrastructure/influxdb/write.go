package influxdb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// WriteGrouping exports every non-missing sample of g as one point.
//
// Each point carries the tags column, device, unit and run_id, a single
// "value" field, and the wall-clock time of the sample (g.Start plus its
// offset on the axis). Points are sent in batches of the configured size.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - g: Grouped series to export
//   - runID: Identifier of the plotting run, stored as a tag
//
// Returns:
//   - int: Number of points written
//   - error: ErrNotConnected, or ErrWriteFailed wrapping the server error
func (c *Client) WriteGrouping(ctx context.Context, g *sensorlog.Grouping, runID string) (int, error) {
	if !c.IsConnected() {
		return 0, ErrNotConnected
	}

	points := Points(c.measurement, g, runID)
	for start := 0; start < len(points); start += c.batchSize {
		end := min(start+c.batchSize, len(points))
		if err := c.writeAPI.WritePoint(ctx, points[start:end]...); err != nil {
			return start, fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	return len(points), nil
}

// Points converts g into InfluxDB points. NaN samples are skipped and
// unitless series carry no unit tag.
func Points(measurement string, g *sensorlog.Grouping, runID string) []*write.Point {
	var points []*write.Point
	for _, group := range g.Groups {
		for _, s := range group.Series {
			tags := map[string]string{
				"column": s.Column,
				"device": s.Device,
				"run_id": runID,
			}
			if s.Unit != "" {
				tags["unit"] = s.Unit
			}
			for i, v := range s.Samples {
				if math.IsNaN(v) || i >= len(g.Axis) {
					continue
				}
				points = append(points, write.NewPoint(
					measurement,
					tags,
					map[string]interface{}{"value": v},
					g.Start.Add(time.Duration(g.Axis[i])*time.Second),
				))
			}
		}
	}
	return points
}
