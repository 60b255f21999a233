package tsdb

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// WriteGrouping exports every non-missing sample of g as one line.
//
// Lines carry the tags column, device, unit and run_id and a single
// "value" field. VictoriaMetrics stores them as the metric
// "<measurement>_value".
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - g: Grouped series to export
//   - runID: Identifier of the plotting run, stored as a tag
//
// Returns:
//   - int: Number of lines accepted before any failure
//   - error: ErrNotConnected, or ErrWriteFailed for a rejected batch
func (c *Client) WriteGrouping(ctx context.Context, g *sensorlog.Grouping, runID string) (int, error) {
	if !c.IsConnected() {
		return 0, ErrNotConnected
	}

	lines := groupingLines(c.measurement, g, runID)
	for start := 0; start < len(lines); start += c.batchSize {
		end := min(start+c.batchSize, len(lines))
		if err := c.post(ctx, lines[start:end]); err != nil {
			return start, err
		}
	}
	return len(lines), nil
}

// groupingLines formats every non-missing sample of g as line protocol.
func groupingLines(measurement string, g *sensorlog.Grouping, runID string) []string {
	var lines []string
	for _, group := range g.Groups {
		for _, s := range group.Series {
			tags := map[string]string{
				"column": s.Column,
				"device": s.Device,
				"unit":   s.Unit,
				"run_id": runID,
			}
			for i, v := range s.Samples {
				if math.IsNaN(v) || i >= len(g.Axis) {
					continue
				}
				at := g.Start.Add(time.Duration(g.Axis[i]) * time.Second)
				lines = append(lines, formatLineProtocol(measurement, tags, v, at))
			}
		}
	}
	return lines
}

// formatLineProtocol formats a data point as an InfluxDB line protocol string.
//
// Format: measurement,tag1=val1,tag2=val2 value=<float> timestamp_ns
//
// Tags with empty values are omitted; line protocol does not allow them.
func formatLineProtocol(measurement string, tags map[string]string, value float64, t time.Time) string {
	var b strings.Builder

	b.WriteString(escapeMeasurement(measurement))

	// Tags (sorted for deterministic output and testability)
	tagKeys := make([]string, 0, len(tags))
	for k, v := range tags {
		if v == "" {
			continue
		}
		tagKeys = append(tagKeys, k)
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		b.WriteByte(',')
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(escapeTag(tags[k]))
	}

	b.WriteString(" value=")
	b.WriteString(strconv.FormatFloat(value, 'f', -1, 64))

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(t.UnixNano(), 10))

	return b.String()
}

// escapeTag escapes special characters in tag keys/values per line protocol spec.
// Commas, equals signs, and spaces must be backslash-escaped.
// Newlines are stripped to prevent line protocol injection.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// escapeMeasurement escapes special characters in measurement names.
// Newlines are stripped to prevent line protocol injection.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
