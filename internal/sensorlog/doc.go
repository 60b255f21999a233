// Package sensorlog turns a HWiNFO-style sensor log into time-aligned series.
//
// A sensor log is a CSV export where the header names every sensor column
// ("CPU Package [°C]", "Fan Failure [Yes/No]", ...) and each data row is one
// sample. The device that owns a column is not in the header: it is written
// positionally into a trailer row appended after the last sample. This package
// recovers that metadata and normalises the samples.
//
// # Pipeline
//
//	RawTable ──▶ BuildFamilyIndex ──▶ FamilyIndex (column ⇄ device)
//	    │
//	    └──────▶ Ingest ──▶ Dataset (relative time axis, boolean columns as 1/0)
//	                            │
//	        Selection ──────────┴──▶ GroupByUnit ──▶ Grouping (unit → series)
//
// # Key Types
//
//   - RawTable: the file as read, every cell still a string, trailer rows included
//   - FamilyLabel: tagged value read from the trailer row (Missing or a label)
//   - FamilyIndex: immutable bidirectional column/family mapping
//   - Dataset: data rows only, with a Timestamps axis in whole seconds
//   - Selection: ordered column names chosen for rendering
//   - Grouping: selected series partitioned by unit, ready for a renderer
//
// # Error Handling
//
// ErrFormat marks input that cannot be interpreted (timestamps that do not
// match the date format, cells that are not numbers). It is fatal for a run.
// Columns without a known device are not errors: GroupByUnit reports them
// through the Logger and labels them UnknownDevice.
//
// # Thread Safety
//
// A FamilyIndex and a Dataset are read-only once built and may be shared.
package sensorlog
