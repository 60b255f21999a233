package render

import "errors"

var (
	// ErrUnknownFormat is returned by New for an unsupported output format.
	ErrUnknownFormat = errors.New("render: unknown format")

	// ErrNothingToRender is returned when a grouping holds no series.
	ErrNothingToRender = errors.New("render: nothing to render")

	// ErrIncompleteChart is returned when a rendered chart lost series data.
	ErrIncompleteChart = errors.New("render: incomplete chart")
)
