package sensorlog

import (
	"fmt"
	"strings"
)

// LabelKind distinguishes the two shapes of a FamilyLabel.
type LabelKind int

const (
	// LabelMissing means the column is not attributable to a device.
	LabelMissing LabelKind = iota
	// LabelPresent means the column belongs to the named device.
	LabelPresent
)

// FamilyLabel is the device label read from a column's trailer cell.
// The zero value is Missing.
type FamilyLabel struct {
	kind LabelKind
	name string
}

// Missing returns the label of a column with no device.
func Missing() FamilyLabel {
	return FamilyLabel{kind: LabelMissing}
}

// Label returns the label of a column owned by the named device.
func Label(name string) FamilyLabel {
	return FamilyLabel{kind: LabelPresent, name: name}
}

// Kind reports which shape the label has.
func (l FamilyLabel) Kind() LabelKind {
	return l.kind
}

// Name returns the device name; it is empty for a Missing label.
func (l FamilyLabel) Name() string {
	return l.name
}

// String implements fmt.Stringer.
func (l FamilyLabel) String() string {
	if l.kind == LabelMissing {
		return "<missing>"
	}
	return l.name
}

// labelFromCell reads a trailer cell. Blank or absent cells are Missing;
// anything else is kept verbatim as the device name.
func labelFromCell(cell string) FamilyLabel {
	if strings.TrimSpace(cell) == "" {
		return Missing()
	}
	return Label(cell)
}

// FamilyIndex maps columns to device families and families to columns.
//
// It is built once per RawTable by BuildFamilyIndex and never modified
// afterwards, so it is safe to share between goroutines.
//
// Lookups come in two flavours:
//   - FamilyOf, ColumnsOf: tolerant, report absence through the zero value
//   - Family, Columns: strict, fail with ErrFamilyNotFound
type FamilyIndex struct {
	familyOf  map[string]string
	columnsOf map[string][]string
	families  []string
}

// BuildFamilyIndex derives the column/family mapping from the last row of t.
//
// Columns whose last cell is Missing are left out of the index; this covers
// the Date and Time columns, which belong to no device. Families and the
// columns within each family keep first-seen file order.
//
// Parameters:
//   - t: The raw table, trailer rows still attached
//
// Returns:
//   - *FamilyIndex: Immutable index (empty if t has no rows)
func BuildFamilyIndex(t *RawTable) *FamilyIndex {
	ix := &FamilyIndex{
		familyOf:  make(map[string]string),
		columnsOf: make(map[string][]string),
	}

	for c, column := range t.names {
		label := labelFromCell(t.lastCell(c))

		switch label.Kind() {
		case LabelMissing:
			continue
		case LabelPresent:
			family := label.Name()
			ix.familyOf[column] = family
			if _, ok := ix.columnsOf[family]; !ok {
				ix.families = append(ix.families, family)
			}
			ix.columnsOf[family] = append(ix.columnsOf[family], column)
		}
	}

	return ix
}

// FamilyOf returns the family of column and whether it has one.
func (ix *FamilyIndex) FamilyOf(column string) (string, bool) {
	if ix == nil {
		return "", false
	}
	family, ok := ix.familyOf[column]
	return family, ok
}

// ColumnsOf returns the columns of family in file order, or nil if the
// family is unknown. The returned slice is a copy.
func (ix *FamilyIndex) ColumnsOf(family string) []string {
	if ix == nil {
		return nil
	}
	columns, ok := ix.columnsOf[family]
	if !ok {
		return nil
	}
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Families returns all family names in first-seen order.
func (ix *FamilyIndex) Families() []string {
	if ix == nil {
		return nil
	}
	out := make([]string, len(ix.families))
	copy(out, ix.families)
	return out
}

// Family is the strict form of FamilyOf.
// Returns ErrFamilyNotFound if column has no family.
func (ix *FamilyIndex) Family(column string) (string, error) {
	family, ok := ix.FamilyOf(column)
	if !ok {
		return "", fmt.Errorf("%w: column %q", ErrFamilyNotFound, column)
	}
	return family, nil
}

// Columns is the strict form of ColumnsOf.
// Returns ErrFamilyNotFound if family is not in the index.
func (ix *FamilyIndex) Columns(family string) ([]string, error) {
	columns := ix.ColumnsOf(family)
	if columns == nil {
		return nil, fmt.Errorf("%w: %q", ErrFamilyNotFound, family)
	}
	return columns, nil
}

// Len returns the number of indexed columns.
func (ix *FamilyIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.familyOf)
}
