package token

import "testing"

func TestLineIndexMarker(t *testing.T) {
	src := []byte("ab\ncd\n\nxyz")
	x := NewLineIndex(src)
	tests := []struct {
		off    int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 4, 1},
		{9, 4, 3},
	}
	for _, tt := range tests {
		got := x.Marker(tt.off)
		if got.Line != tt.line || got.Column != tt.column {
			t.Errorf("Marker(%d) = %d:%d, want %d:%d", tt.off, got.Line, got.Column, tt.line, tt.column)
		}
		if back := x.Offset(got.Line, got.Column); back != tt.off {
			t.Errorf("Offset(%d, %d) = %d, want %d", got.Line, got.Column, back, tt.off)
		}
	}
}

func TestLineIndexLine(t *testing.T) {
	x := NewLineIndex([]byte("ab\ncd\n\nxyz"))
	tests := []struct {
		line int
		want string
	}{
		{1, "ab"},
		{2, "cd"},
		{3, ""},
		{4, "xyz"},
	}
	for _, tt := range tests {
		if got := string(x.Line(tt.line)); got != tt.want {
			t.Errorf("Line(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
	if x.Line(0) != nil || x.Line(5) != nil {
		t.Errorf("out of range lines should be nil")
	}
}

func TestSpanValidity(t *testing.T) {
	a := Marker{Offset: 0, Line: 1, Column: 1}
	b := Marker{Offset: 4, Line: 1, Column: 5}
	if !(Span{Start: a, End: b}).IsValid() {
		t.Errorf("ordered span should be valid")
	}
	if (Span{Start: b, End: a}).IsValid() {
		t.Errorf("reversed span should be invalid")
	}
	if (Span{Start: a}).IsValid() {
		t.Errorf("span with unset end should be invalid")
	}
	if got := (Span{Start: a, End: b}).String(); got != "[0,4)" {
		t.Errorf("String() = %q", got)
	}
}

func TestCursor(t *testing.T) {
	var c Cursor
	if _, ok := c.Position(); ok {
		t.Fatalf("fresh cursor should have no position")
	}
	start := Marker{Offset: 2, Line: 1, Column: 3}
	end := Marker{Offset: 7, Line: 2, Column: 2}
	c.SetPosition(end)
	if got, ok := c.Position(); !ok || got != end {
		t.Fatalf("Position() = %v, %v", got, ok)
	}
	span := c.SpanFrom(start)
	if span.Start != start || span.End != end {
		t.Errorf("SpanFrom = %v", span)
	}
	c.Reset()
	if _, ok := c.Position(); ok {
		t.Errorf("reset cursor should have no position")
	}
}
