package debug

import (
	"testing"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/parse"
)

func TestRender(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a: [1, two]\nb: !t x\n", "{a: [1, two], b: !t x}"},
		{"s: \"odd value\"\n", `{s: "odd value"}`},
		{"n: ~\nf: 1.5\nok: true\n", "{n: null, f: 1.5, ok: true}"},
		{"- -3\n- .inf\n", "[-3, .inf]"},
		{"", "null"},
	}
	for _, tt := range tests {
		v, err := parse.ParseString(tt.src)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.src, err)
		}
		if got := Render(v); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRenderNil(t *testing.T) {
	if got := Render(nil); got != "null" {
		t.Errorf("Render(nil) = %q", got)
	}
}

func TestDocStringer(t *testing.T) {
	d := Doc{ir.FromSeq(ir.FromInt(1), ir.FromString("x"))}
	if got := d.String(); got != "[1, x]" {
		t.Errorf("Doc.String() = %q", got)
	}
}
