package sensorlog

import (
	"fmt"
	"time"
)

// UnknownDevice labels series whose column has no family in the index.
const UnknownDevice = "unknown"

// Selection is an ordered list of column names chosen for rendering.
// Order decides the position of each series within its unit group.
type Selection []string

// TimeSeries is one selected column, ready for a renderer.
type TimeSeries struct {
	// Column is the column name as it appears in the log header.
	Column string

	// Unit is derived from Column; empty means unitless.
	Unit string

	// Device is the owning family, or UnknownDevice.
	Device string

	// KnownDevice is false when Device is the UnknownDevice placeholder.
	KnownDevice bool

	// Samples are aligned with Grouping.Axis. Missing samples are NaN.
	Samples []float64
}

// Label returns the legend text "column (device)".
func (s TimeSeries) Label() string {
	return fmt.Sprintf("%s (%s)", s.Column, s.Device)
}

// UnitGroup holds every selected series sharing one unit.
type UnitGroup struct {
	Unit   string
	Series []TimeSeries
}

// Grouping is the renderer input: the shared time axis and the selected
// series partitioned by unit.
type Grouping struct {
	// Start is the wall-clock time of the first sample.
	Start time.Time

	// Axis is the relative time axis in whole seconds.
	Axis []int64

	// Groups are ordered by the first appearance of their unit in the
	// selection. Series within a group follow selection order.
	Groups []UnitGroup
}

// SeriesCount returns the number of series across all groups.
func (g *Grouping) SeriesCount() int {
	n := 0
	for _, group := range g.Groups {
		n += len(group.Series)
	}
	return n
}

// GroupByUnit partitions the selected columns of ds by unit.
//
// Selected columns missing from ds are reported through logger and skipped.
// Columns without a family are reported and kept with Device set to
// UnknownDevice. A column whose cells are not numeric fails the whole call.
//
// Parameters:
//   - ds: Ingested dataset
//   - index: Family index built from the same log (nil is treated as empty)
//   - sel: Columns to render, in order
//   - logger: Diagnostics sink (nil discards diagnostics)
//
// Returns:
//   - *Grouping: Series grouped by unit (possibly with no groups)
//   - error: ErrFormat if a selected column holds a non-numeric cell
func GroupByUnit(ds *Dataset, index *FamilyIndex, sel Selection, logger Logger) (*Grouping, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	g := &Grouping{
		Start: ds.Start,
		Axis:  ds.Timestamps,
	}
	groupOf := make(map[string]int)

	for _, name := range sel {
		column, ok := ds.Column(name)
		if !ok {
			logger.Warn("selected column not in log, skipping", "column", name)
			continue
		}

		samples, err := column.Floats()
		if err != nil {
			return nil, err
		}

		device, known := index.FamilyOf(name)
		if !known {
			logger.Warn("no device family for column", "column", name, "device", UnknownDevice)
			device = UnknownDevice
		}

		series := TimeSeries{
			Column:      name,
			Unit:        column.Unit,
			Device:      device,
			KnownDevice: known,
			Samples:     samples,
		}

		i, ok := groupOf[column.Unit]
		if !ok {
			i = len(g.Groups)
			groupOf[column.Unit] = i
			g.Groups = append(g.Groups, UnitGroup{Unit: column.Unit})
		}
		g.Groups[i].Series = append(g.Groups[i].Series, series)
	}

	return g, nil
}
