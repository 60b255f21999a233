// Package history records one row per ingested sensor log.
//
// The runs table lives in the same SQLite database as the layout library.
// Rows are written by the pipeline after a successful ingestion and listed by
// "hwlog runs".
package history
