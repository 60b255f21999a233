package sensorlog

import "errors"

// Domain errors for the sensorlog package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, sensorlog.ErrFormat) {
//	    // the log cannot be interpreted, abort the run
//	}
var (
	// ErrFormat is returned when a timestamp or numeric cell does not match
	// the expected pattern.
	ErrFormat = errors.New("sensorlog: format error")

	// ErrMalformedTable is returned when the CSV structure itself is broken
	// (unterminated quotes, rows wider than the header).
	ErrMalformedTable = errors.New("sensorlog: malformed table")

	// ErrMissingColumn is returned when a mandatory column (Date, Time) is absent.
	ErrMissingColumn = errors.New("sensorlog: missing column")

	// ErrTooFewRows is returned when a table holds no data rows besides the trailer.
	ErrTooFewRows = errors.New("sensorlog: too few rows")

	// ErrFamilyNotFound is returned by the strict FamilyIndex lookups.
	ErrFamilyNotFound = errors.New("sensorlog: family not found")

	// ErrUnknownEncoding is returned when a text encoding name is not recognised.
	ErrUnknownEncoding = errors.New("sensorlog: unknown encoding")
)
