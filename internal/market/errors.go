package market

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable covers network, authentication, HTTP status and
	// cancellation failures. Adapters never retry it.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedResponse is returned when a payload lacks expected structure.
	ErrMalformedResponse = errors.New("malformed response")
)

// SourceError ties a failure kind to the source that produced it and the
// underlying cause. errors.Is matches both Kind and Err.
type SourceError struct {
	Source string
	Kind   error
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as an ErrSourceUnavailable from source.
func Unavailable(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrSourceUnavailable, Err: err}
}

// Malformed wraps err as an ErrMalformedResponse from source.
func Malformed(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrMalformedResponse, Err: err}
}
