package scan

import "github.com/spanyaml/spanyaml/token"

// EventKind identifies a primitive event produced by an event source.
type EventKind int

const (
	EventScalar EventKind = iota
	EventSequenceStart
	EventSequenceEnd
	EventMappingStart
	EventMappingEnd
	EventAlias
)

func (k EventKind) String() string {
	switch k {
	case EventScalar:
		return "Scalar"
	case EventSequenceStart:
		return "SequenceStart"
	case EventSequenceEnd:
		return "SequenceEnd"
	case EventMappingStart:
		return "MappingStart"
	case EventMappingEnd:
		return "MappingEnd"
	case EventAlias:
		return "Alias"
	default:
		return "Unknown"
	}
}

// Style records how a scalar was written in the source. Quoted scalars are
// always strings; plain scalars are resolved by the parser.
type Style int

const (
	Plain Style = iota
	SingleQuoted
	DoubleQuoted
)

// Event is one primitive event of a document. Every event carries the
// source markers spanning its own text; container start events additionally
// carry any anchor or tag written before the container.
type Event struct {
	Kind  EventKind
	Start token.Marker
	End   token.Marker

	// Value holds the decoded scalar text for EventScalar and the anchor
	// name for EventAlias.
	Value  string
	Style  Style
	Anchor string
	Tag    string
}

// Source is a sequence of primitive events. Next returns io.EOF after the
// final event; any other error is a parse-level failure carrying a source
// position.
type Source interface {
	Next() (*Event, error)
}
