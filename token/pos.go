package token

import (
	"fmt"
	"sort"
)

// Marker is a single location in a source document. Line and Column are
// 1-indexed; a Marker with zero Line or Column is unset.
type Marker struct {
	Offset int
	Line   int
	Column int
}

// Start returns a Marker pointing at the beginning of a document.
func Start() Marker {
	return Marker{Offset: 0, Line: 1, Column: 1}
}

// IsZero reports whether the marker is unset.
func (m Marker) IsZero() bool {
	return m.Line == 0 || m.Column == 0
}

func (m Marker) String() string {
	return fmt.Sprintf("line %d column %d", m.Line, m.Column)
}

// Span is a half-open range [Start, End) of source locations.
type Span struct {
	Start Marker
	End   Marker
}

// IsValid reports whether both markers are set and ordered by offset.
func (s Span) IsValid() bool {
	return !s.Start.IsZero() && !s.End.IsZero() && s.Start.Offset <= s.End.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start.Offset, s.End.Offset)
}

// LineIndex maps byte offsets in a source document to 1-indexed line and
// column numbers, and back.
type LineIndex struct {
	src []byte
	nl  []int // offsets of '\n' bytes, ascending
}

func NewLineIndex(src []byte) *LineIndex {
	x := &LineIndex{src: src}
	for i, b := range src {
		if b == '\n' {
			x.nl = append(x.nl, i)
		}
	}
	return x
}

// Marker returns the Marker for the given byte offset.
func (x *LineIndex) Marker(off int) Marker {
	n := len(x.nl)
	li := sort.Search(n, func(i int) bool {
		return x.nl[i] >= off
	})
	col := off + 1
	if li > 0 {
		col = off - x.nl[li-1]
	}
	return Marker{Offset: off, Line: li + 1, Column: col}
}

// Offset returns the byte offset of the given 1-indexed line and column.
// Out-of-range lines clamp to the end of the document.
func (x *LineIndex) Offset(line, column int) int {
	if line <= 1 {
		return min(column-1, len(x.src))
	}
	if line-2 >= len(x.nl) {
		return len(x.src)
	}
	return min(x.nl[line-2]+column, len(x.src))
}

// Line returns the content of the given 1-indexed line, without its
// trailing newline.
func (x *LineIndex) Line(line int) []byte {
	if line < 1 || line > len(x.nl)+1 {
		return nil
	}
	start := 0
	if line > 1 {
		start = x.nl[line-2] + 1
	}
	end := len(x.src)
	if line-1 < len(x.nl) {
		end = x.nl[line-1]
	}
	return x.src[start:end]
}
