package sensorlog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// Well-known column names and ingestion defaults.
const (
	// ColumnDate holds the calendar date of each sample.
	ColumnDate = "Date"

	// ColumnTime holds the wall-clock time of each sample.
	ColumnTime = "Time"

	// ColumnTimestamps is the derived relative time axis.
	ColumnTimestamps = "Timestamps"

	// DefaultDateFormat matches "31.12.2024 23:59:59" (day.month.year, 24h clock).
	DefaultDateFormat = "%d.%m.%Y %H:%M:%S"

	// TrailerRows is the number of metadata rows HWiNFO appends after the samples.
	TrailerRows = 2
)

// fractionalSeconds matches a trailing ".123" on a Time cell.
var fractionalSeconds = regexp.MustCompile(`\.\d*$`)

// Column is one ingested sensor column.
type Column struct {
	// Name is the header name, e.g. "CPU Package [°C]".
	Name string

	// Unit is UnitOf(Name); empty for unitless columns.
	Unit string

	// Cells holds one value per sample. Yes/no columns hold "1" or "0".
	Cells []string
}

// Floats converts every cell to a float64.
//
// Blank cells are missing samples and become NaN, as do infinite values.
// Any other cell that does not parse as a number fails the whole column
// with ErrFormat.
func (c Column) Floats() ([]float64, error) {
	out := make([]float64, len(c.Cells))
	for i, cell := range c.Cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %q is not a number",
				ErrFormat, c.Name, i+1, c.Cells[i])
		}
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

// Dataset is a sensor log after ingestion: trailer rows removed, Date and
// Time replaced by a relative time axis, yes/no columns coerced.
type Dataset struct {
	// Start is the parsed timestamp of the first sample.
	Start time.Time

	// Timestamps holds whole seconds elapsed since Start, one per sample.
	Timestamps []int64

	// Columns are the sensor columns in file order, followed by a
	// ColumnTimestamps column carrying the axis itself.
	Columns []Column

	byName map[string]int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Timestamps)
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Column{}, false
	}
	return d.Columns[i], true
}

// Names returns the column names in dataset order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Ingest converts a raw sensor log into a Dataset and its FamilyIndex.
//
// Steps, in order:
//  1. Build the FamilyIndex from the full table (trailer rows included)
//  2. Drop the TrailerRows last rows
//  3. Join Date and Time with a single space, dropping fractional seconds
//  4. Parse the result with dateFormat; the first row is the start time
//  5. Replace Date/Time with whole seconds since the start (floor)
//  6. Coerce every yes/no column to 1 ("Yes", "Ja") or 0 (anything else)
//
// Parameters:
//   - t: Raw table as read from the file
//   - dateFormat: strftime-style pattern; empty means DefaultDateFormat
//
// Returns:
//   - *Dataset: Ingested samples
//   - *FamilyIndex: Column/family mapping for the same table
//   - error: ErrMissingColumn, ErrTooFewRows, or ErrFormat for a timestamp
//     that does not match dateFormat
func Ingest(t *RawTable, dateFormat string) (*Dataset, *FamilyIndex, error) {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}

	index := BuildFamilyIndex(t)

	dates, ok := t.Column(ColumnDate)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnDate)
	}
	times, ok := t.Column(ColumnTime)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnTime)
	}

	samples := t.RowCount() - TrailerRows
	if samples <= 0 {
		return nil, nil, fmt.Errorf("%w: %d rows, need more than %d trailer rows",
			ErrTooFewRows, t.RowCount(), TrailerRows)
	}

	start, axis, err := relativeAxis(dates[:samples], times[:samples], dateFormat)
	if err != nil {
		return nil, nil, err
	}

	ds := &Dataset{
		Start:      start,
		Timestamps: axis,
		byName:     make(map[string]int),
	}

	for c, name := range t.names {
		if name == ColumnDate || name == ColumnTime || name == ColumnTimestamps {
			continue
		}

		unit := UnitOf(name)
		cells := make([]string, samples)
		copy(cells, t.columns[c][:samples])
		if IsBooleanUnit(unit) {
			for i, cell := range cells {
				cells[i] = coerceBoolean(cell)
			}
		}

		ds.add(Column{Name: name, Unit: unit, Cells: cells})
	}

	axisCells := make([]string, samples)
	for i, s := range axis {
		axisCells[i] = strconv.FormatInt(s, 10)
	}
	ds.add(Column{Name: ColumnTimestamps, Unit: UnitOf(ColumnTimestamps), Cells: axisCells})

	return ds, index, nil
}

func (d *Dataset) add(c Column) {
	d.byName[c.Name] = len(d.Columns)
	d.Columns = append(d.Columns, c)
}

// relativeAxis parses every Date/Time pair and returns the first timestamp
// together with the whole seconds elapsed since it for each row.
func relativeAxis(dates, times []string, dateFormat string) (time.Time, []int64, error) {
	var start time.Time
	axis := make([]int64, len(dates))

	for i := range dates {
		composite := dates[i] + " " + fractionalSeconds.ReplaceAllString(times[i], "")

		ts, err := timefmt.Parse(composite, dateFormat)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("%w: row %d: timestamp %q does not match %q: %w",
				ErrFormat, i+1, composite, dateFormat, err)
		}

		if i == 0 {
			start = ts
		}
		axis[i] = wholeSeconds(ts.Sub(start))
	}

	return start, axis, nil
}

// wholeSeconds floors a duration to whole seconds.
func wholeSeconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if d%time.Second < 0 {
		s--
	}
	return s
}
