package parse

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/spanyaml/spanyaml/ir"
)

func mustParse(t *testing.T, src string, opts ...Option) *ir.Value {
	t.Helper()
	v, err := ParseString(src, opts...)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", src, err)
	}
	return v
}

func TestRootSpan(t *testing.T) {
	v := mustParse(t, "x: 1.0\ny: 2.0\n")
	if !v.Span.IsValid() {
		t.Fatalf("root span invalid: %v", v.Span)
	}
	if got := v.Span.String(); got != "[0,14)" {
		t.Errorf("root span = %s, want [0,14)", got)
	}
	x := v.Get("x")
	if x == nil || x.Span.String() != "[3,6)" {
		t.Errorf("x span = %v", x.Span)
	}
	if !x.Number.IsFloat() {
		t.Errorf("1.0 should resolve as a float")
	}
}

func TestScalarResolution(t *testing.T) {
	tests := []struct {
		in   string
		want *ir.Value
	}{
		{"null", ir.Null()},
		{"~", ir.Null()},
		{"true", ir.FromBool(true)},
		{"False", ir.FromBool(false)},
		{"42", ir.FromInt(42)},
		{"-3", ir.FromInt(-3)},
		{"0", ir.FromInt(0)},
		{"0x1A", ir.FromInt(26)},
		{"0o17", ir.FromInt(15)},
		{"01", ir.FromString("01")},
		{"1.5", ir.FromFloat(1.5)},
		{"-2e3", ir.FromFloat(-2000)},
		{".nan", ir.FromFloat(math.NaN())},
		{".inf", ir.FromFloat(math.Inf(1))},
		{"-.inf", ir.FromFloat(math.Inf(-1))},
		{"hello world", ir.FromString("hello world")},
		{`"true"`, ir.FromString("true")},
		{`'01'`, ir.FromString("01")},
		{"1.2.3", ir.FromString("1.2.3")},
		{"18446744073709551615", ir.FromUint(math.MaxUint64)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := mustParse(t, tt.in)
			if !ir.Equal(v, tt.want) {
				t.Errorf("parsed %q as %s value, want %s", tt.in, v.Kind, tt.want.Kind)
			}
		})
	}
}

func TestDuplicateKeyDefaultError(t *testing.T) {
	_, err := ParseString("a: 1\na: 2\n")
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	if !errors.Is(err, ir.ErrParse) {
		t.Errorf("duplicate key error should match ir.ErrParse: %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `duplicate entry with key "a" at a`) {
		t.Errorf("error should name the key's path: %q", msg)
	}
	if !strings.Contains(msg, "line 2") {
		t.Errorf("error should carry the second occurrence's position: %q", msg)
	}
}

func TestDuplicateKeyPolicies(t *testing.T) {
	first := func(*ir.Path, *ir.Value, *ir.Value) DuplicateKey { return DuplicateKeyFirst }
	last := func(*ir.Path, *ir.Value, *ir.Value) DuplicateKey { return DuplicateKeyLast }

	v := mustParse(t, "a: 1\nb: 2\na: 3\n", WithDuplicateKeyPolicy(first))
	if !ir.Equal(v.Get("a"), ir.FromInt(1)) {
		t.Errorf("first policy: a = %v", v.Get("a"))
	}

	v = mustParse(t, "a: 1\nb: 2\na: 3\n", WithDuplicateKeyPolicy(last))
	if !ir.Equal(v.Get("a"), ir.FromInt(3)) {
		t.Errorf("last policy: a = %v", v.Get("a"))
	}
	// Last keeps the first occurrence's position.
	if k, _ := v.Map.Index(0); k.Str != "a" {
		t.Errorf("last policy moved the key: first key = %v", k)
	}
	if v.Map.Len() != 2 {
		t.Errorf("mapping len = %d, want 2", v.Map.Len())
	}
}

func TestDuplicateKeyPolicyArgs(t *testing.T) {
	var gotPath string
	var gotExisting, gotIncoming *ir.Value
	policy := func(p *ir.Path, existing, incoming *ir.Value) DuplicateKey {
		gotPath = p.String()
		gotExisting, gotIncoming = existing, incoming
		return DuplicateKeyFirst
	}
	mustParse(t, "outer:\n  k: 1\n  k: 2\n", WithDuplicateKeyPolicy(policy))
	if gotPath != "outer" {
		t.Errorf("policy path = %q, want outer", gotPath)
	}
	if !ir.Equal(gotExisting, ir.FromInt(1)) || !ir.Equal(gotIncoming, ir.FromInt(2)) {
		t.Errorf("policy values = %v, %v", gotExisting, gotIncoming)
	}
}

func TestAnchorsAndAliases(t *testing.T) {
	v := mustParse(t, "a: &x [1, 2]\nb: *x\n")
	a, b := v.Get("a"), v.Get("b")
	if !ir.Equal(a, b) {
		t.Fatalf("alias should copy the anchored value")
	}
	if a.Span == b.Span {
		t.Errorf("alias use site should carry its own span")
	}
	if b.Span.Start.Line != 2 {
		t.Errorf("alias span line = %d, want 2", b.Span.Start.Line)
	}
	// The copy is independent of the anchored node.
	b.Seq[0] = ir.FromInt(9)
	if ir.Equal(a, b) {
		t.Errorf("alias copy should not share children")
	}
}

func TestBlockAnchoredValues(t *testing.T) {
	// Anchor on the key's line, value as an indented block collection.
	v := mustParse(t, "base: &b\n  x: 1\nother: *b\n")
	base := v.Get("base")
	if base.Kind != ir.MappingKind || !ir.Equal(base.Get("x"), ir.FromInt(1)) {
		t.Fatalf("base = %v", base)
	}
	if !ir.Equal(base, v.Get("other")) {
		t.Errorf("other = %v", v.Get("other"))
	}

	v = mustParse(t, "items: &i\n  - 1\nmore: *i\n")
	items := v.Get("items")
	if items.Kind != ir.SequenceKind || len(items.Seq) != 1 {
		t.Fatalf("items = %v", items)
	}
	if !ir.Equal(items, v.Get("more")) {
		t.Errorf("more = %v", v.Get("more"))
	}

	v = mustParse(t, "shape: !circle\n  r: 3\n")
	s := v.Get("shape")
	if s.Kind != ir.TaggedKind || s.Tag.TagName() != "circle" {
		t.Fatalf("shape = %+v", s)
	}
	if !ir.Equal(s.Untag().Get("r"), ir.FromInt(3)) {
		t.Errorf("payload = %v", s.Untag())
	}
}

func TestUnresolvedAlias(t *testing.T) {
	_, err := ParseString("a: *nope\n")
	if err == nil || !strings.Contains(err.Error(), "unresolved alias *nope") {
		t.Fatalf("err = %v", err)
	}
}

func TestTaggedValues(t *testing.T) {
	v := mustParse(t, "shape: !circle {radius: 3}\n")
	s := v.Get("shape")
	if s.Kind != ir.TaggedKind || s.Tag.TagName() != "circle" {
		t.Fatalf("shape = %+v", s)
	}
	inner := s.Untag()
	if inner.Kind != ir.MappingKind || !ir.Equal(inner.Get("radius"), ir.FromInt(3)) {
		t.Errorf("payload = %v", inner)
	}
}

func TestMergeKeyPreserved(t *testing.T) {
	// Parsing never expands merge keys; that is an explicit step.
	v := mustParse(t, "base: &b {x: 1}\nout:\n  <<: *b\n  y: 2\n")
	out := v.Get("out")
	if out.Map.GetString("<<") == nil {
		t.Errorf("merge key should be kept by the parser: %v", out)
	}
}

func TestParseReader(t *testing.T) {
	v, err := ParseReader(strings.NewReader("n: 7\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(v.Get("n"), ir.FromInt(7)) {
		t.Errorf("n = %v", v.Get("n"))
	}
}

func TestNestedSpans(t *testing.T) {
	src := "servers:\n  - host: a\n  - host: b\n"
	v := mustParse(t, src)
	servers := v.Get("servers")
	if servers.Kind != ir.SequenceKind || len(servers.Seq) != 2 {
		t.Fatalf("servers = %v", servers)
	}
	first := servers.Seq[0]
	text := src[first.Span.Start.Offset:first.Span.End.Offset]
	if !strings.HasPrefix(text, "host: a") {
		t.Errorf("first element covers %q", text)
	}
}
