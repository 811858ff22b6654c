package ir

import (
	"strings"

	"github.com/spanyaml/spanyaml/token"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	SequenceKind
	MappingKind
	TaggedKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	case TaggedKind:
		return "tagged"
	default:
		return "unknown"
	}
}

// Value is a single node of a parsed document. Every Value owns its own
// Span; child Values carry their spans independently of the parent's.
type Value struct {
	Kind Kind
	Span token.Span

	Bool   bool
	Number Number
	Str    string
	Seq    []*Value
	Map    *Mapping
	Tag    *TaggedValue
}

// TaggedValue is a Value annotated with an explicit type tag, as written
// with a leading `!` sigil in the source.
type TaggedValue struct {
	Tag   string
	Value *Value
}

// TagName returns the tag with any leading `!` sigils stripped.
func (t *TaggedValue) TagName() string {
	return strings.TrimLeft(t.Tag, "!")
}

func Null() *Value {
	return &Value{Kind: NullKind}
}

func FromBool(b bool) *Value {
	return &Value{Kind: BoolKind, Bool: b}
}

func FromInt(i int64) *Value {
	return &Value{Kind: NumberKind, Number: IntNumber(i)}
}

func FromUint(u uint64) *Value {
	return &Value{Kind: NumberKind, Number: UintNumber(u)}
}

func FromFloat(f float64) *Value {
	return &Value{Kind: NumberKind, Number: FloatNumber(f)}
}

func FromString(s string) *Value {
	return &Value{Kind: StringKind, Str: s}
}

func FromSeq(vs ...*Value) *Value {
	return &Value{Kind: SequenceKind, Seq: vs}
}

func FromMapping(m *Mapping) *Value {
	return &Value{Kind: MappingKind, Map: m}
}

func FromTagged(tag string, v *Value) *Value {
	return &Value{Kind: TaggedKind, Tag: &TaggedValue{Tag: tag, Value: v}}
}

// WithSpan sets the value's span and returns it.
func (v *Value) WithSpan(span token.Span) *Value {
	v.Span = span
	return v
}

// Untag returns the innermost value beneath any chain of tags.
func (v *Value) Untag() *Value {
	for v.Kind == TaggedKind {
		v = v.Tag.Value
	}
	return v
}

// IsNull reports whether the value is the null scalar.
func (v *Value) IsNull() bool {
	return v.Kind == NullKind
}

// Get returns the value for a string key of a mapping, or nil when the
// value is not a mapping or the key is absent.
func (v *Value) Get(key string) *Value {
	if v.Kind != MappingKind {
		return nil
	}
	return v.Map.GetString(key)
}

// Clone returns a deep copy of the value, spans included.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	res := &Value{
		Kind:   v.Kind,
		Span:   v.Span,
		Bool:   v.Bool,
		Number: v.Number,
		Str:    v.Str,
	}
	switch v.Kind {
	case SequenceKind:
		res.Seq = make([]*Value, len(v.Seq))
		for i, e := range v.Seq {
			res.Seq[i] = e.Clone()
		}
	case MappingKind:
		res.Map = v.Map.Clone()
	case TaggedKind:
		res.Tag = &TaggedValue{Tag: v.Tag.Tag, Value: v.Tag.Value.Clone()}
	}
	return res
}

// Visit walks the value tree depth-first. f is called twice per node, once
// before the children (isPost false) and once after (isPost true); returning
// false from the pre-order call skips the children.
func (v *Value) Visit(f func(v *Value, isPost bool) (bool, error)) error {
	dive, err := f(v, false)
	if err != nil {
		return err
	}
	if dive {
		switch v.Kind {
		case SequenceKind:
			for _, e := range v.Seq {
				if err := e.Visit(f); err != nil {
					return err
				}
			}
		case MappingKind:
			for i := range v.Map.Len() {
				_, mv := v.Map.Index(i)
				if err := mv.Visit(f); err != nil {
					return err
				}
			}
		case TaggedKind:
			if err := v.Tag.Value.Visit(f); err != nil {
				return err
			}
		}
	}
	_, err = f(v, true)
	return err
}
