package tsdb

import "errors"

// Sentinel errors for the VictoriaMetrics exporter. The pipeline treats all
// of them as a skipped export, never as a failed run.
var (
	// ErrDisabled is returned by Connect when tsdb.enabled is false.
	ErrDisabled = errors.New("tsdb: export disabled")

	// ErrConnectionFailed means the /health probe did not answer 200.
	ErrConnectionFailed = errors.New("tsdb: server unreachable")

	// ErrNotConnected is returned by WriteGrouping after Close.
	ErrNotConnected = errors.New("tsdb: client closed")

	// ErrWriteFailed wraps a transport error or a non-2xx /write response.
	ErrWriteFailed = errors.New("tsdb: batch rejected")
)
