package decode

import (
	"fmt"
	"reflect"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/parse"
)

// UnusedKeyFunc observes a mapping entry that no field of the target shape
// consumed. path is the position of the enclosing mapping. Unused keys are
// never an error; decoding continues after the callback returns.
type UnusedKeyFunc func(path *ir.Path, key, value *ir.Value)

// Transformer rewrites a node before it is decoded. Returning (nil, nil)
// leaves the node untouched; returning a replacement decodes the
// replacement instead. A replacement is not re-transformed, but its
// children are.
type Transformer func(v *ir.Value) (*ir.Value, error)

// Option configures a decode operation.
type Option func(*options)

type options struct {
	unusedKey   UnusedKeyFunc
	transformer Transformer
}

// WithUnusedKeyFunc installs the unused-key callback.
func WithUnusedKeyFunc(f UnusedKeyFunc) Option {
	return func(o *options) { o.unusedKey = f }
}

// WithTransformer installs the field transformer.
func WithTransformer(t Transformer) Option {
	return func(o *options) { o.transformer = t }
}

// decodeState is the explicit context of one decode operation: the caller's
// policies plus the cross-cutting flags that scope transformation and raw
// capture. A fresh state is built per entry-point call, so nothing leaks
// between operations.
type decodeState struct {
	opts       options
	borrowed   bool
	fromStream bool

	// applyTransform gates the transformer for the subtree currently
	// being decoded; Verbatim targets clear it and restore on exit.
	applyTransform bool
}

func newState(borrowed, fromStream bool, opts []Option) *decodeState {
	d := &decodeState{borrowed: borrowed, fromStream: fromStream, applyTransform: true}
	for _, o := range opts {
		o(&d.opts)
	}
	return d
}

// Into decodes v into dst, which must be a non-nil pointer. The decoded
// result may alias subtrees of v; use IntoRef when v must stay independent.
func Into(v *ir.Value, dst any, opts ...Option) error {
	return newState(false, false, opts).run(v, dst)
}

// IntoRef decodes v into dst without capturing any part of v: subtrees
// stored into the target (raw values, variants, value fields) are cloned.
func IntoRef(v *ir.Value, dst any, opts ...Option) error {
	return newState(true, false, opts).run(v, dst)
}

// Typed decodes v into a value of type T.
func Typed[T any](v *ir.Value, opts ...Option) (T, error) {
	var t T
	err := Into(v, &t, opts...)
	return t, err
}

// Root parses src and decodes the document into dst. policy resolves
// duplicate mapping keys during the parse; nil means duplicates are an
// error. Raw-value capture in ShouldBe targets is disabled on this path,
// since the failed subtree belongs to the transient parse.
func Root(src []byte, dst any, policy parse.DuplicateKeyPolicy, opts ...Option) error {
	var popts []parse.Option
	if policy != nil {
		popts = append(popts, parse.WithDuplicateKeyPolicy(policy))
	}
	v, err := parse.Parse(src, popts...)
	if err != nil {
		return err
	}
	return newState(false, true, opts).run(v, dst)
}

func (d *decodeState) run(v *ir.Value, dst any) error {
	if dst == nil {
		return &ir.ShapeError{Msg: "destination must be a non-nil pointer"}
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &ir.ShapeError{Msg: "destination must be a non-nil pointer"}
	}
	root := ir.RootPath()
	return d.decode(v, rv.Elem(), &root, false)
}

// capture returns the value to store into the target: the node itself when
// consuming, a deep copy when borrowing.
func (d *decodeState) capture(v *ir.Value) *ir.Value {
	if d.borrowed {
		return v.Clone()
	}
	return v
}

func (d *decodeState) unused(path *ir.Path, key, value *ir.Value) {
	if d.opts.unusedKey != nil {
		d.opts.unusedKey(path, key, value)
	}
}

var (
	valueType    = reflect.TypeOf(ir.Value{})
	valuePtrType = reflect.TypeOf((*ir.Value)(nil))
)

// decode dispatches one node onto one target. transformed marks a node
// already produced by the transformer, which must not be transformed again.
func (d *decodeState) decode(v *ir.Value, rv reflect.Value, path *ir.Path, transformed bool) error {
	if rv.CanAddr() {
		switch u := rv.Addr().Interface().(type) {
		case valueUnmarshaler:
			return u.unmarshalValue(d, v, path, transformed)
		case VariantUnmarshaler:
			return d.decodeVariant(v, u, path)
		case Unmarshaler:
			return u.UnmarshalValue(&Decoder{state: d, path: path}, v)
		}
	}

	if d.opts.transformer != nil && d.applyTransform && !transformed {
		nv, err := d.opts.transformer(v)
		if err != nil {
			return &ir.ExternalError{Err: err, NodeSpan: v.Span}
		}
		if nv != nil {
			v = nv
		}
	}

	// Structural fast path: a target asking for the full node gets it
	// without a field-by-field walk.
	switch rv.Type() {
	case valueType:
		rv.Set(reflect.ValueOf(*d.capture(v)))
		return nil
	case valuePtrType:
		rv.Set(reflect.ValueOf(d.capture(v)))
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		if v.Untag().IsNull() {
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decode(v, rv.Elem(), path, true)
	}

	switch rv.Kind() {
	case reflect.Bool:
		uv := v.Untag()
		if uv.Kind != ir.BoolKind {
			return d.typeError(rv, v, path)
		}
		rv.SetBool(uv.Bool)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return d.decodeInt(v, rv, path)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return d.decodeUint(v, rv, path)
	case reflect.Float32, reflect.Float64:
		return d.decodeFloat(v, rv, path)
	case reflect.String:
		uv := v.Untag()
		if uv.Kind != ir.StringKind {
			return d.typeError(rv, v, path)
		}
		rv.SetString(uv.Str)
		return nil
	case reflect.Slice:
		return d.decodeSlice(v, rv, path)
	case reflect.Array:
		return d.decodeArray(v, rv, path)
	case reflect.Map:
		return d.decodeMap(v, rv, path)
	case reflect.Struct:
		return d.decodeStruct(v, rv, path)
	case reflect.Interface:
		return d.decodeInterface(v, rv, path)
	default:
		return &ir.ShapeError{
			Msg:      fmt.Sprintf("unsupported target type %s", rv.Type()),
			Path:     path.String(),
			NodeSpan: v.Span,
		}
	}
}

func (d *decodeState) typeError(rv reflect.Value, v *ir.Value, path *ir.Path) error {
	return &ir.TypeError{
		Expected: rv.Type().String(),
		Actual:   v.Untag().Kind.String(),
		Path:     path.String(),
		NodeSpan: v.Span,
	}
}

func (d *decodeState) overflowError(n ir.Number, rv reflect.Value, v *ir.Value, path *ir.Path) error {
	return &ir.ShapeError{
		Msg:      fmt.Sprintf("value %s overflows %s", n, rv.Type()),
		Path:     path.String(),
		NodeSpan: v.Span,
	}
}

func (d *decodeState) decodeInt(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	if uv.Kind != ir.NumberKind || !uv.Number.IsInt() {
		return d.typeError(rv, v, path)
	}
	i, ok := uv.Number.AsInt64()
	if !ok || rv.OverflowInt(i) {
		return d.overflowError(uv.Number, rv, v, path)
	}
	rv.SetInt(i)
	return nil
}

func (d *decodeState) decodeUint(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	if uv.Kind != ir.NumberKind || !uv.Number.IsInt() {
		return d.typeError(rv, v, path)
	}
	u, ok := uv.Number.AsUint64()
	if !ok || rv.OverflowUint(u) {
		return d.overflowError(uv.Number, rv, v, path)
	}
	rv.SetUint(u)
	return nil
}

func (d *decodeState) decodeFloat(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	if uv.Kind != ir.NumberKind {
		return d.typeError(rv, v, path)
	}
	f := uv.Number.AsFloat64()
	if rv.OverflowFloat(f) {
		return d.overflowError(uv.Number, rv, v, path)
	}
	rv.SetFloat(f)
	return nil
}

func (d *decodeState) decodeSlice(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	if uv.IsNull() {
		rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
		return nil
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 && uv.Kind == ir.StringKind {
		rv.SetBytes([]byte(uv.Str))
		return nil
	}
	if uv.Kind != ir.SequenceKind {
		return d.typeError(rv, v, path)
	}
	out := reflect.MakeSlice(rv.Type(), len(uv.Seq), len(uv.Seq))
	for i, e := range uv.Seq {
		child := path.Seq(i)
		if err := d.decode(e, out.Index(i), &child, false); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (d *decodeState) decodeArray(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	if uv.IsNull() {
		rv.SetZero()
		return nil
	}
	if uv.Kind != ir.SequenceKind {
		return d.typeError(rv, v, path)
	}
	if len(uv.Seq) != rv.Len() {
		return &ir.ShapeError{
			Msg:      fmt.Sprintf("invalid length %d, expected %d", len(uv.Seq), rv.Len()),
			Path:     path.String(),
			NodeSpan: v.Span,
		}
	}
	for i, e := range uv.Seq {
		child := path.Seq(i)
		if err := d.decode(e, rv.Index(i), &child, false); err != nil {
			return err
		}
	}
	return nil
}

func (d *decodeState) decodeMap(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	if uv.IsNull() {
		rv.Set(reflect.MakeMap(rv.Type()))
		return nil
	}
	if uv.Kind != ir.MappingKind {
		return d.typeError(rv, v, path)
	}
	mt := rv.Type()
	out := reflect.MakeMapWithSize(mt, uv.Map.Len())
	for i := range uv.Map.Len() {
		k, val := uv.Map.Index(i)
		kv := reflect.New(mt.Key()).Elem()
		kp := path.Unknown()
		if err := d.decode(k, kv, &kp, false); err != nil {
			return err
		}
		vv := reflect.New(mt.Elem()).Elem()
		vp := entryPath(path, k)
		if err := d.decode(val, vv, &vp, false); err != nil {
			return err
		}
		out.SetMapIndex(kv, vv)
	}
	rv.Set(out)
	return nil
}

func entryPath(path *ir.Path, key *ir.Value) ir.Path {
	if key.Kind == ir.StringKind {
		return path.Map(key.Str)
	}
	return path.Unknown()
}

func (d *decodeState) decodeInterface(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	if rv.NumMethod() != 0 {
		return &ir.ShapeError{
			Msg:      fmt.Sprintf("unsupported target type %s", rv.Type()),
			Path:     path.String(),
			NodeSpan: v.Span,
		}
	}
	out, err := d.anyValue(v, path)
	if err != nil {
		return err
	}
	if out == nil {
		rv.SetZero()
		return nil
	}
	rv.Set(reflect.ValueOf(out))
	return nil
}

// anyValue converts a node to untyped Go data: nil, bool, int64, uint64,
// float64, string, []any, map[string]any, or Variant for tagged nodes.
func (d *decodeState) anyValue(v *ir.Value, path *ir.Path) (any, error) {
	switch v.Kind {
	case ir.NullKind:
		return nil, nil
	case ir.BoolKind:
		return v.Bool, nil
	case ir.NumberKind:
		if v.Number.IsFloat() {
			return v.Number.AsFloat64(), nil
		}
		if i, ok := v.Number.AsInt64(); ok {
			return i, nil
		}
		u, _ := v.Number.AsUint64()
		return u, nil
	case ir.StringKind:
		return v.Str, nil
	case ir.SequenceKind:
		out := make([]any, len(v.Seq))
		for i, e := range v.Seq {
			child := path.Seq(i)
			elem, err := d.anyValue(e, &child)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case ir.MappingKind:
		out := make(map[string]any, v.Map.Len())
		for i := range v.Map.Len() {
			k, val := v.Map.Index(i)
			if k.Kind != ir.StringKind {
				return nil, &ir.TypeError{
					Expected: "string key",
					Actual:   k.Kind.String(),
					Path:     path.String(),
					NodeSpan: k.Span,
				}
			}
			child := path.Map(k.Str)
			elem, err := d.anyValue(val, &child)
			if err != nil {
				return nil, err
			}
			out[k.Str] = elem
		}
		return out, nil
	case ir.TaggedKind:
		return Variant{Tag: v.Tag.TagName(), Value: d.capture(v.Tag.Value)}, nil
	default:
		return nil, &ir.ShapeError{Msg: "unknown value kind", Path: path.String(), NodeSpan: v.Span}
	}
}

func (d *decodeState) decodeVariant(v *ir.Value, u VariantUnmarshaler, path *ir.Path) error {
	dec := &Decoder{state: d, path: path}
	switch v.Kind {
	case ir.TaggedKind:
		return u.UnmarshalVariant(dec, v.Tag.TagName(), d.capture(v.Tag.Value))
	case ir.StringKind:
		return u.UnmarshalVariant(dec, v.Str, nil)
	default:
		return &ir.TypeError{
			Expected: "tagged value or string",
			Actual:   v.Kind.String(),
			Path:     path.String(),
			NodeSpan: v.Span,
		}
	}
}
