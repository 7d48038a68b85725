// Package errs defines the closed set of failure kinds a report run can
// surface: parse errors while reading datasets, retrieval errors from the
// enrichment source, and domain errors from statistics over empty input.
//
// Absence of an enrichment field is not an error; it travels as a value.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors outside the taxonomy
	// (I/O, context cancellation, configuration).
	KindUnknown Kind = iota
	KindParse
	KindRetrieval
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindRetrieval:
		return "retrieval"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// ErrEmpty is wrapped by every DomainError raised for empty input.
var ErrEmpty = errors.New("empty input")

// ParseError reports a dataset line that does not fit its schema. Field is
// empty when the line has the wrong number of fields.
type ParseError struct {
	Dataset string
	Line    int
	Field   string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %s line %d: %v", e.Dataset, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s line %d: field %q value %q: %v", e.Dataset, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RetrievalError reports a failed remote fetch. Status is zero when no HTTP
// response was received.
type RetrievalError struct {
	ID     string
	URL    string
	Status int
	Err    error
}

func (e *RetrievalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("retrieve %s: %s returned status %d", e.ID, e.URL, e.Status)
	}
	return fmt.Sprintf("retrieve %s: %s: %v", e.ID, e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// DomainError reports a statistic computed over input it is undefined for.
type DomainError struct {
	Op  string
	Err error
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *DomainError) Unwrap() error { return e.Err }

// Empty returns the DomainError raised when op receives no values.
func Empty(op string) error { return &DomainError{Op: op, Err: ErrEmpty} }

// KindOf reports the kind of the first taxonomy error found in err's chain.
func KindOf(err error) Kind {
	var (
		pe *ParseError
		re *RetrievalError
		de *DomainError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &re):
		return KindRetrieval
	case errors.As(err, &de):
		return KindDomain
	}
	return KindUnknown
}
