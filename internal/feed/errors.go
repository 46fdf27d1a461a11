package feed

import (
	"errors"
	"fmt"
)

// Kind classifies failures of the feed pipeline.
type Kind string

const (
	AuthError     Kind = "auth"
	FetchError    Kind = "fetch"
	WriteError    Kind = "write"
	RealtimeError Kind = "realtime"
	RenderError   Kind = "render"
)

// Error is a classified pipeline failure. Source names the table or
// subsystem involved, when there is one.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s error (%s): %v", e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a kind and source.
func NewError(kind Kind, source string, err error) *Error {
	return &Error{Kind: kind, Source: source, Err: err}
}

// IsKind reports whether any error in err's chain is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// Message returns the innermost message for display to the acting user.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return err.Error()
}
