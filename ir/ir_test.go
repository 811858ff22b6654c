package ir

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/spanyaml/spanyaml/token"
)

func TestNumberEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Number
		want bool
	}{
		{"int eq int", IntNumber(1), IntNumber(1), true},
		{"int eq uint", IntNumber(1), UintNumber(1), true},
		{"int eq float", IntNumber(1), FloatNumber(1.0), true},
		{"neg int ne uint", IntNumber(-1), UintNumber(1), false},
		{"nan eq nan", FloatNumber(math.NaN()), FloatNumber(math.NaN()), true},
		{"nan ne int", FloatNumber(math.NaN()), IntNumber(0), false},
		{"float ne float", FloatNumber(1.5), FloatNumber(2.5), false},
		{"big uint eq", UintNumber(math.MaxUint64), UintNumber(math.MaxUint64), true},
		{"big uint ne int", UintNumber(math.MaxUint64), IntNumber(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal (flipped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumberString(t *testing.T) {
	tests := []struct {
		n    Number
		want string
	}{
		{IntNumber(-3), "-3"},
		{UintNumber(42), "42"},
		{FloatNumber(1), "1.0"},
		{FloatNumber(1.5), "1.5"},
		{FloatNumber(math.NaN()), ".nan"},
		{FloatNumber(math.Inf(1)), ".inf"},
		{FloatNumber(math.Inf(-1)), "-.inf"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEqualMappingOrderInsensitive(t *testing.T) {
	a := NewMapping()
	a.Append(FromString("x"), FromInt(1))
	a.Append(FromString("y"), FromInt(2))
	b := NewMapping()
	b.Append(FromString("y"), FromInt(2))
	b.Append(FromString("x"), FromInt(1))
	if !Equal(FromMapping(a), FromMapping(b)) {
		t.Errorf("mappings with same pairs in different order should be equal")
	}
	c := NewMapping()
	c.Append(FromString("x"), FromInt(1))
	if Equal(FromMapping(a), FromMapping(c)) {
		t.Errorf("mappings with different key sets should not be equal")
	}
}

func TestEqualTagged(t *testing.T) {
	a := FromTagged("!p", FromInt(1))
	b := FromTagged("!!p", FromInt(1))
	if !Equal(a, b) {
		t.Errorf("tags compare with sigils stripped")
	}
	if Equal(a, FromTagged("!q", FromInt(1))) {
		t.Errorf("different tags should not be equal")
	}
}

func TestEqualIgnoresSpans(t *testing.T) {
	a := FromInt(7)
	b := FromInt(7).Clone()
	b.Span.Start.Offset = 10
	b.Span.Start.Line = 2
	b.Span.Start.Column = 1
	if !Equal(a, b) {
		t.Errorf("spans must not affect equality")
	}
}

func TestUntag(t *testing.T) {
	v := FromTagged("!a", FromTagged("!b", FromString("x")))
	if got := v.Untag(); got.Kind != StringKind || got.Str != "x" {
		t.Errorf("Untag = %v", got)
	}
}

func TestMappingGet(t *testing.T) {
	m := NewMapping()
	m.Append(FromString("k"), FromInt(3))
	m.Append(FromInt(1), FromString("one"))
	if got := m.GetString("k"); got == nil || !Equal(got, FromInt(3)) {
		t.Errorf("GetString(k) = %v", got)
	}
	if got := m.Get(FromInt(1)); got == nil || got.Str != "one" {
		t.Errorf("Get(1) = %v", got)
	}
	if m.GetString("absent") != nil {
		t.Errorf("absent key should be nil")
	}
}

func TestPathString(t *testing.T) {
	root := RootPath()
	a := root.Map("a")
	b := a.Map("b")
	e := b.Seq(2)
	c := e.Map("c")
	tests := []struct {
		p    Path
		want string
	}{
		{root, "."},
		{a, "a"},
		{e, "a.b[2]"},
		{c, "a.b[2].c"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	u := b.Unknown()
	if got := u.String(); got != "a.b.?" {
		t.Errorf("unknown path = %q", got)
	}
	al := b.Alias()
	if got := al.String(); got != "a.b" {
		t.Errorf("alias path = %q", got)
	}
	ru := root.Unknown()
	if got := ru.String(); got != "?" {
		t.Errorf("root unknown path = %q", got)
	}
}

func TestErrorMessages(t *testing.T) {
	span := spanAt(4, 19)
	te := &TypeError{Expected: "int", Actual: "string", Path: "server.port", NodeSpan: span}
	if got := te.Error(); got != "invalid type: string, expected int at server.port at line 4 column 19" {
		t.Errorf("TypeError = %q", got)
	}
	se := &ShapeError{Msg: "missing field `host`", Path: ".", NodeSpan: span}
	if got := se.Error(); got != "missing field `host` at line 4 column 19" {
		t.Errorf("ShapeError = %q", got)
	}
	pe := &ParseError{Msg: "unexpected character", NodeSpan: span}
	if !errors.Is(pe, ErrParse) {
		t.Errorf("ParseError should match ErrParse")
	}
	inner := errors.New("boom")
	ee := &ExternalError{Err: inner, NodeSpan: span}
	if !errors.Is(ee, inner) {
		t.Errorf("ExternalError should unwrap to the caller's error")
	}
	if !strings.Contains(ee.Error(), "line 4 column 19") {
		t.Errorf("ExternalError = %q", ee.Error())
	}
}

func spanAt(line, column int) token.Span {
	m := token.Marker{Offset: 1, Line: line, Column: column}
	return token.Span{Start: m, End: token.Marker{Offset: 2, Line: line, Column: column + 1}}
}
