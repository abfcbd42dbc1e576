package features

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is wrapped by a ParseError when a column is absent from the raw record.
	ErrMissingField = errors.New("missing field")
	// ErrNonFinite is wrapped by a ParseError when a measure parses to NaN or an infinity.
	ErrNonFinite = errors.New("value is not a finite number")
)

// ParseError reports a session field that could not be converted to its numeric type.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("row %d: field %s: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: field %s: cannot parse %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError reports a Month value that is not a known abbreviation.
type LookupError struct {
	Row   int
	Value string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("row %d: unrecognized month %q", e.Row, e.Value)
}
