package sensorlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/encoding"
)

// RawTable is a sensor log exactly as read: named columns of string cells,
// trailer rows included.
//
// Cells are stored column-major. Rows shorter than the header are padded
// with empty cells, which read as missing values.
type RawTable struct {
	names   []string
	columns [][]string
	rows    int
}

// NewRawTable builds a RawTable from a header and row-major records.
//
// Header names are made unique: an empty name becomes "Unnamed: <i>" and a
// repeated name gets a ".1", ".2", ... suffix in order of appearance.
//
// Parameters:
//   - header: Column names from the first line of the file
//   - records: Data and trailer rows, each at most len(header) wide
//
// Returns:
//   - *RawTable: Table with len(records) rows
//   - error: ErrMalformedTable if a record is wider than the header
func NewRawTable(header []string, records [][]string) (*RawTable, error) {
	names := uniqueNames(header)

	columns := make([][]string, len(names))
	for c := range columns {
		columns[c] = make([]string, len(records))
	}

	for r, record := range records {
		if len(record) > len(names) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrMalformedTable, r+1, len(record), len(names))
		}
		for c, cell := range record {
			columns[c][r] = cell
		}
	}

	return &RawTable{
		names:   names,
		columns: columns,
		rows:    len(records),
	}, nil
}

// ReadTable parses a sensor log from r.
//
// The stream is decoded from enc before CSV parsing; a nil enc reads the
// bytes as UTF-8. The first line is the header; every following line,
// including the trailer rows, becomes a table row.
//
// Parameters:
//   - r: Source of the CSV text
//   - enc: Fixed text encoding of the file (see LookupEncoding)
//
// Returns:
//   - *RawTable: The parsed table
//   - error: ErrMalformedTable for broken CSV, or the underlying read error
func ReadTable(r io.Reader, enc encoding.Encoding) (*RawTable, error) {
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // trailer rows may be ragged
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedTable)
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}
		records = append(records, record)
	}

	return NewRawTable(header, records)
}

// ReadTableFile opens path and parses it with ReadTable.
// The file is closed before returning on every path.
func ReadTableFile(path string, enc encoding.Encoding) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	table, err := ReadTable(f, enc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return table, nil
}

// Columns returns the column names in file order.
func (t *RawTable) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// RowCount returns the number of rows below the header, trailer rows included.
func (t *RawTable) RowCount() int {
	return t.rows
}

// Column returns the cells of the named column.
// The returned slice must not be modified.
func (t *RawTable) Column(name string) ([]string, bool) {
	for i, n := range t.names {
		if n == name {
			return t.columns[i], true
		}
	}
	return nil, false
}

// lastCell returns the last-row cell of column c, or "" for an empty table.
func (t *RawTable) lastCell(c int) string {
	if t.rows == 0 {
		return ""
	}
	return t.columns[c][t.rows-1]
}

// uniqueNames applies the header naming rules described on NewRawTable.
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			candidate := name
			for dup {
				n++
				candidate = name + "." + strconv.Itoa(n)
				_, dup = seen[candidate]
			}
			seen[name] = n
			name = candidate
		}
		seen[name] = 0
		names[i] = name
	}

	return names
}

// wrapCSVError tags encoding/csv parse errors as ErrMalformedTable.
func wrapCSVError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	return fmt.Errorf("reading csv: %w", err)
}
