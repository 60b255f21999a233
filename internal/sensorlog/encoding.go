package sensorlog

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is the fixed single-byte Western encoding HWiNFO writes.
const DefaultEncoding = "iso-8859-1"

// LookupEncoding resolves an IANA encoding name such as "iso-8859-1" or
// "windows-1252". An empty name resolves to DefaultEncoding.
//
// The same encoding must be used for reading logs and for reading and
// writing layout files, otherwise column names with non-ASCII units ("°C")
// no longer match.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownEncoding, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %q is not supported", ErrUnknownEncoding, name)
	}
	return enc, nil
}
