package imagery

import (
	"fmt"
	"strings"
)

// SchemaError reports a malformed backend response, typically a region result
// whose header lacks one of the coordinate or time columns.
type SchemaError struct {
	Missing []string
	Detail  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema error: missing columns %s", strings.Join(e.Missing, ", "))
	}
	return "schema error: " + e.Detail
}

// UnknownBandError is returned when a band is absent from a table's schema.
type UnknownBandError struct {
	Band string
}

func (e *UnknownBandError) Error() string {
	return fmt.Sprintf("unknown band %q", e.Band)
}

// BandNotFoundError is returned when a collection does not carry a requested band.
type BandNotFoundError struct {
	Collection string
	Band       string
}

func (e *BandNotFoundError) Error() string {
	return fmt.Sprintf("band %q not found in collection %q", e.Band, e.Collection)
}

// AlignmentError is returned when two tables share no timestamp after rounding.
type AlignmentError struct {
	LeftRows  int
	RightRows int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment error: no shared datetime between %d and %d rows", e.LeftRows, e.RightRows)
}

// BackendUnavailableError wraps a network or service failure of the imagery backend.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("imagery backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Err
}
