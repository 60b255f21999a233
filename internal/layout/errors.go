package layout

import "errors"

// Domain errors for the layout package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, layout.ErrResource) {
//	    // log and continue with an empty selection
//	}
var (
	// ErrResource wraps every I/O failure of a layout store.
	ErrResource = errors.New("layout: resource error")

	// ErrLayoutNotFound is returned when a layout file or named layout does not exist.
	ErrLayoutNotFound = errors.New("layout: not found")

	// ErrInvalidName is returned for empty layout names and for column names
	// that cannot be stored one per line.
	ErrInvalidName = errors.New("layout: invalid name")
)
