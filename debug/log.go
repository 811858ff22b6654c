package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spanyaml/spanyaml/ir"
)

// Doc wraps a Value so it renders as a flow-style document in log output.
type Doc struct{ *ir.Value }

func (d Doc) String() string { return Render(d.Value) }

// Render writes a value as a single-line flow-style document.
func Render(v *ir.Value) string {
	var b strings.Builder
	render(&b, v)
	return b.String()
}

func render(b *strings.Builder, v *ir.Value) {
	if v == nil {
		b.WriteString("null")
		return
	}
	switch v.Kind {
	case ir.NullKind:
		b.WriteString("null")
	case ir.BoolKind:
		b.WriteString(strconv.FormatBool(v.Bool))
	case ir.NumberKind:
		b.WriteString(v.Number.String())
	case ir.StringKind:
		b.WriteString(renderString(v.Str))
	case ir.SequenceKind:
		b.WriteByte('[')
		for i, e := range v.Seq {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, e)
		}
		b.WriteByte(']')
	case ir.MappingKind:
		b.WriteByte('{')
		first := true
		v.Map.Pairs(func(k, val *ir.Value) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			render(b, k)
			b.WriteString(": ")
			render(b, val)
			return true
		})
		b.WriteByte('}')
	case ir.TaggedKind:
		b.WriteString(v.Tag.Tag)
		b.WriteByte(' ')
		render(b, v.Tag.Value)
	}
}

func renderString(s string) string {
	if plainSafe(s) {
		return s
	}
	return strconv.Quote(s)
}

func plainSafe(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.' || c == '/':
		default:
			return false
		}
	}
	return true
}

// Logf formats to stderr, rendering Value arguments as flow documents and
// untyped JSON-ish arguments as indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		switch x := args[i].(type) {
		case *ir.Value:
			args[i] = Render(x)
		case map[string]any, []any:
			d, err := json.MarshalIndent(x, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", x)
				continue
			}
			args[i] = string(d)
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
