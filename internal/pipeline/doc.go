// Package pipeline drives one plotting run from log file to chart.
//
// A run reads and ingests the log, obtains a column selection (layout file,
// named layout, or the interactive selector), optionally exports it, groups
// the selected series by unit, renders them and hands them to the configured
// sinks.
//
// # Error Handling
//
// Only failures that leave nothing to plot are returned: an unreadable or
// malformed log, a non-numeric selected column, an unknown renderer, or a
// failed chart write. Layout, export, library, sink and history failures are
// logged as warnings and the run carries on with what it has.
package pipeline
