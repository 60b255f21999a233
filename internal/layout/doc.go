// Package layout persists column selections.
//
// Two stores are provided:
//
//   - FileStore: the plain text layout file, one column name per line, in a
//     fixed single-byte encoding shared with the sensor log reader
//   - Library: named layouts kept in the hwlog SQLite database
//
// Failures from either store are ResourceErrors (see ErrResource). Callers
// are expected to log them and carry on with an empty selection rather than
// abort a run.
package layout
