package sensorlog

import "strings"

// Units whose cells are spelled as localised yes/no tokens.
const (
	UnitYesNo  = "Yes/No"
	UnitJaNein = "Ja/Nein"
)

// yesTokens is the closed vocabulary coerced to 1. Everything else becomes 0.
var yesTokens = map[string]struct{}{
	"Yes": {},
	"Ja":  {},
}

// UnitOf returns the physical unit of a column: the text between the last
// '[' and the last ']' of its name.
//
// A name without both brackets, or with the last ']' before the last '[',
// has no unit and yields the empty string.
//
// Example:
//
//	UnitOf("CPU Package [°C]")   // "°C"
//	UnitOf("Fan Failure [Yes/No]") // "Yes/No"
//	UnitOf("Date")               // ""
func UnitOf(column string) string {
	start := strings.LastIndexByte(column, '[')
	end := strings.LastIndexByte(column, ']')
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return column[start+1 : end]
}

// IsBooleanUnit reports whether unit marks a yes/no column.
func IsBooleanUnit(unit string) bool {
	return unit == UnitYesNo || unit == UnitJaNein
}

// coerceBoolean maps a yes/no cell to "1" or "0".
// Matching is exact; "yes", " Yes" and "Nein" all map to "0".
func coerceBoolean(cell string) string {
	if _, ok := yesTokens[cell]; ok {
		return "1"
	}
	return "0"
}
