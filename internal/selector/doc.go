// Package selector builds a column selection interactively.
//
// The operator browses the device families of a sensor log and picks
// columns by index. Two states alternate:
//
//	DeviceChoice ──index──▶ ColumnChoice ──line──▶ DeviceChoice
//	     │
//	     └──empty line / EOF──▶ done
//
// Indices always refer to the list currently on screen. Invalid input is
// reported and the same prompt is shown again; nothing from a rejected line
// is added to the selection.
package selector
