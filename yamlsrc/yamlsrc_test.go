package yamlsrc

import (
	"errors"
	"testing"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/parse"
)

// The adapted external parser must agree with the native scanner on the
// resulting tree. Spans differ in the details, so only structure is
// compared.
func TestAgreesWithNativeScanner(t *testing.T) {
	docs := []string{
		"a: 1\nb: [x, 2.5]\n",
		"list:\n  - 1\n  - two\n",
		"base: &b {x: 1}\nout:\n  <<: *b\n",
		"t: !circle {r: 3}\n",
		"q: \"a b\"\nn: ~\n",
		"",
	}
	for _, doc := range docs {
		want, err := parse.ParseString(doc)
		if err != nil {
			t.Fatalf("native parse %q: %v", doc, err)
		}
		got, err := parse.FromSource(New([]byte(doc)))
		if err != nil {
			t.Fatalf("external parse %q: %v", doc, err)
		}
		if !ir.Equal(got, want) {
			t.Errorf("parse %q:\n external = %v\n native   = %v", doc, got, want)
		}
	}
}

func TestSpansPointIntoSource(t *testing.T) {
	src := []byte("host: example\nport: 80\n")
	v, err := parse.FromSource(New(src))
	if err != nil {
		t.Fatal(err)
	}
	port := v.Get("port")
	if port == nil || !port.Span.IsValid() {
		t.Fatalf("port span = %v", port)
	}
	text := src[port.Span.Start.Offset:port.Span.End.Offset]
	if string(text) != "80" {
		t.Errorf("port span covers %q, want 80", text)
	}
	if port.Span.Start.Line != 2 {
		t.Errorf("port line = %d, want 2", port.Span.Start.Line)
	}
}

func TestParseErrorSurfaces(t *testing.T) {
	_, err := parse.FromSource(New([]byte("a: [1")))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ir.ErrParse) {
		t.Errorf("error should match ir.ErrParse: %v", err)
	}
}
