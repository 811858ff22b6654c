package token

// Cursor carries the "current position" of an event source through a parse
// or decode operation. The event parser records positions as it emits
// events; any step building a node reads the cursor immediately before and
// after constructing the node and uses the pair as the node's span.
//
// A Cursor belongs to exactly one parse or decode operation. Entry points
// construct a fresh Cursor per call, so no state can leak between
// operations.
type Cursor struct {
	mark Marker
	set  bool
}

// SetPosition records the latest known source position.
func (c *Cursor) SetPosition(m Marker) {
	c.mark = m
	c.set = true
}

// Position returns the most recently recorded position, if any.
func (c *Cursor) Position() (Marker, bool) {
	return c.mark, c.set
}

// Reset clears the recorded position.
func (c *Cursor) Reset() {
	c.mark = Marker{}
	c.set = false
}

// SpanFrom builds the span from a start marker to the current position.
// If no position has been recorded the span is left unset at that end.
func (c *Cursor) SpanFrom(start Marker) Span {
	return Span{Start: start, End: c.mark}
}
