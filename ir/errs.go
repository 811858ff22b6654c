package ir

import (
	"errors"
	"fmt"

	"github.com/spanyaml/spanyaml/token"
)

var (
	// ErrParse matches any parse-level error via errors.Is.
	ErrParse = errors.New("parse error")
)

// Spanner is implemented by errors that carry the source span of the
// innermost node where the failure was detected.
type Spanner interface {
	error
	Span() token.Span
}

func atSpan(span token.Span) string {
	if !span.IsValid() {
		return ""
	}
	return fmt.Sprintf(" at line %d column %d", span.Start.Line, span.Start.Column)
}

// ParseError reports malformed syntax, a duplicate key rejected by policy,
// or an unresolvable merge-key target.
type ParseError struct {
	Msg      string
	NodeSpan token.Span
	Err      error
}

func (e *ParseError) Error() string {
	return e.Msg + atSpan(e.NodeSpan)
}

func (e *ParseError) Span() token.Span { return e.NodeSpan }

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// TypeError reports a value whose kind does not match the target shape.
type TypeError struct {
	Expected string
	Actual   string
	Path     string
	NodeSpan token.Span
}

func (e *TypeError) Error() string {
	msg := fmt.Sprintf("invalid type: %s, expected %s", e.Actual, e.Expected)
	if e.Path != "" && e.Path != "." {
		msg += " at " + e.Path
	}
	return msg + atSpan(e.NodeSpan)
}

func (e *TypeError) Span() token.Span { return e.NodeSpan }

// ShapeError reports a structural mismatch against the target shape, such
// as a missing required field or a wrong arity.
type ShapeError struct {
	Msg      string
	Path     string
	NodeSpan token.Span
}

func (e *ShapeError) Error() string {
	msg := e.Msg
	if e.Path != "" && e.Path != "." {
		msg += " at " + e.Path
	}
	return msg + atSpan(e.NodeSpan)
}

func (e *ShapeError) Span() token.Span { return e.NodeSpan }

// ExternalError wraps a failure returned by caller-supplied code (a field
// transformer or duplicate-key callback), so callers can unwrap their own
// error value back out of a decode failure.
type ExternalError struct {
	Err      error
	NodeSpan token.Span
}

func (e *ExternalError) Error() string {
	return e.Err.Error() + atSpan(e.NodeSpan)
}

func (e *ExternalError) Span() token.Span { return e.NodeSpan }

func (e *ExternalError) Unwrap() error { return e.Err }
