// Package ir defines the structural, span-annotated representation of a
// parsed document.
//
// A document is a tree of [Value] nodes. A Value is one of a closed set of
// kinds: null, bool, number, string, sequence, mapping, or tagged. Every
// node carries the source [token.Span] it was parsed from; child nodes own
// their spans independently of their parents.
//
// Mappings preserve insertion order and treat keys as unique up to
// structural equality (see [Equal]); numbers compare numerically across
// integer and float representations (see [Number.Equal]).
//
// [Path] values describe positions in the tree for diagnostics and
// callbacks; they are cheap parent-linked chains built during recursive
// descent and never own their parents.
//
// The error types in this package ([ParseError], [TypeError], [ShapeError],
// [ExternalError]) all carry the span of the innermost node where a failure
// was detected, so callers can produce line/column messages.
package ir
