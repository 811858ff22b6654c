package decode

import (
	"reflect"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/token"
)

// valueUnmarshaler is the hook the wrapper types use to take over decoding
// of one node with access to the operation's state.
type valueUnmarshaler interface {
	unmarshalValue(d *decodeState, v *ir.Value, path *ir.Path, transformed bool) error
}

// absentable is implemented by targets that represent "field not present"
// distinctly from a present null.
type absentable interface {
	unmarshalAbsent()
}

// Unmarshaler is implemented by types that decode themselves. The Decoder
// carries the operation's policies so nested decoding behaves like the
// enclosing one.
type Unmarshaler interface {
	UnmarshalValue(dec *Decoder, v *ir.Value) error
}

// VariantUnmarshaler is implemented by discriminated-union targets. tag is
// the variant name with the `!` sigil stripped; payload is nil when the
// source was a bare string naming a unit variant.
type VariantUnmarshaler interface {
	UnmarshalVariant(dec *Decoder, tag string, payload *ir.Value) error
}

// Decoder is the nested decode context handed to Unmarshaler and
// VariantUnmarshaler implementations: it reuses the unused-key callback and
// transformer of the operation that reached the implementation.
type Decoder struct {
	state *decodeState
	path  *ir.Path
}

// Decode decodes v into dst with the enclosing operation's policies.
func (dec *Decoder) Decode(v *ir.Value, dst any) error {
	if dst == nil {
		return &ir.ShapeError{Msg: "destination must be a non-nil pointer", Path: dec.path.String()}
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &ir.ShapeError{Msg: "destination must be a non-nil pointer", Path: dec.path.String()}
	}
	return dec.state.decode(v, rv.Elem(), dec.path, false)
}

// Path returns the position of the node being decoded.
func (dec *Decoder) Path() *ir.Path { return dec.path }

// UnusedKey reports an entry the implementation chose not to consume.
func (dec *Decoder) UnusedKey(key, value *ir.Value) {
	dec.state.unused(dec.path, key, value)
}

// Spanned decodes like its inner type and additionally captures the source
// span of the node it was decoded from.
type Spanned[T any] struct {
	Value T
	Span  token.Span
}

func (s *Spanned[T]) unmarshalValue(d *decodeState, v *ir.Value, path *ir.Path, transformed bool) error {
	s.Span = v.Span
	return d.decode(v, reflect.ValueOf(&s.Value).Elem(), path, transformed)
}

// Verbatim decodes its inner type with the field transformer disabled for
// the whole subtree. Present distinguishes a field that was absent from the
// source mapping from one that was present with a null value.
type Verbatim[T any] struct {
	Value   T
	Present bool
}

func (w *Verbatim[T]) unmarshalValue(d *decodeState, v *ir.Value, path *ir.Path, transformed bool) error {
	saved := d.applyTransform
	d.applyTransform = false
	defer func() { d.applyTransform = saved }()
	if err := d.decode(v, reflect.ValueOf(&w.Value).Elem(), path, transformed); err != nil {
		return err
	}
	w.Present = true
	return nil
}

func (w *Verbatim[T]) unmarshalAbsent() { *w = Verbatim[T]{} }

// ShouldBe is an error-recovery target: decoding into it never fails.
// When the inner decode of T succeeds the result is held; when it fails,
// the failure and (when decoding from an in-memory value) a copy of the
// offending subtree are held instead, and decoding of the enclosing shape
// continues.
type ShouldBe[T any] struct {
	value T
	ok    bool
	raw   *ir.Value
	err   error
}

func (s *ShouldBe[T]) unmarshalValue(d *decodeState, v *ir.Value, path *ir.Path, transformed bool) error {
	var tmp T
	err := d.decode(v, reflect.ValueOf(&tmp).Elem(), path, transformed)
	if err == nil {
		*s = ShouldBe[T]{value: tmp, ok: true}
		return nil
	}
	*s = ShouldBe[T]{err: err}
	if !d.fromStream {
		s.raw = v.Clone()
	}
	return nil
}

// Is reports whether the inner decode succeeded.
func (s *ShouldBe[T]) Is() bool { return s.ok }

// Isnt reports whether the inner decode failed.
func (s *ShouldBe[T]) Isnt() bool { return !s.ok }

// Get returns the decoded value when the inner decode succeeded.
func (s *ShouldBe[T]) Get() (T, bool) { return s.value, s.ok }

// Err returns the inner decode failure, or nil.
func (s *ShouldBe[T]) Err() error { return s.err }

// Raw returns the copy of the subtree that failed to decode. It is nil
// when the decode succeeded or ran from a streaming parse.
func (s *ShouldBe[T]) Raw() *ir.Value { return s.raw }

// TakeRaw returns the captured subtree and releases it.
func (s *ShouldBe[T]) TakeRaw() *ir.Value {
	raw := s.raw
	s.raw = nil
	return raw
}

// Variant is the structural form of a discriminated union: the tag name
// with its `!` sigil stripped, and the payload value. A bare string decodes
// as a unit variant with a nil payload.
type Variant struct {
	Tag   string
	Value *ir.Value
}

func (vv *Variant) unmarshalValue(d *decodeState, v *ir.Value, path *ir.Path, transformed bool) error {
	switch v.Kind {
	case ir.TaggedKind:
		*vv = Variant{Tag: v.Tag.TagName(), Value: d.capture(v.Tag.Value)}
		return nil
	case ir.StringKind:
		*vv = Variant{Tag: v.Str}
		return nil
	default:
		return &ir.TypeError{
			Expected: "tagged value or string",
			Actual:   v.Kind.String(),
			Path:     path.String(),
			NodeSpan: v.Span,
		}
	}
}
