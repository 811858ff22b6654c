package decode

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/spanyaml/spanyaml/ir"
)

// structField is one decodable field of a struct target.
type structField struct {
	name     string
	index    []int
	optional bool
	flatten  bool
}

type structInfo struct {
	normal   map[string]*structField
	order    []*structField
	flattens []*structField
}

var structCache sync.Map // reflect.Type -> *structInfo

func infoOf(t reflect.Type) *structInfo {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo)
	}
	info := &structInfo{normal: map[string]*structField{}}
	collectFields(t, nil, info)
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

func collectFields(t reflect.Type, prefix []int, info *structInfo) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			// Embedded struct fields are promoted into the parent's
			// field set. The embedded type itself may be unexported as
			// long as its fields are.
			collectFields(f.Type, append(append([]int{}, prefix...), i), info)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		sf := &structField{
			name:  name,
			index: append(append([]int{}, prefix...), i),
		}
		if sf.name == "" {
			sf.name = strings.ToLower(f.Name)
		}
		for opts != "" {
			var opt string
			opt, opts, _ = strings.Cut(opts, ",")
			switch opt {
			case "flatten":
				sf.flatten = true
			case "optional", "omitempty":
				sf.optional = true
			}
		}
		info.order = append(info.order, sf)
		if sf.flatten {
			info.flattens = append(info.flattens, sf)
		} else {
			info.normal[sf.name] = sf
		}
	}
}

// decodeStruct decodes a mapping into a struct target. Entries are
// classified against the field set: a matching name decodes that field, an
// unmatched entry is deferred into the catch-all pool when any flatten
// field exists, and otherwise goes to the unused-key callback. Each flatten
// field then decodes from the pool in declaration order, with keys it does
// not consume carried to the next; leftovers after the last flatten reach
// the unused-key callback.
func (d *decodeState) decodeStruct(v *ir.Value, rv reflect.Value, path *ir.Path) error {
	uv := v.Untag()
	var m *ir.Mapping
	switch uv.Kind {
	case ir.NullKind:
		m = ir.NewMapping()
	case ir.MappingKind:
		m = uv.Map
	default:
		return d.typeError(rv, v, path)
	}

	info := infoOf(rv.Type())
	seen := map[string]bool{}
	pool := ir.NewMapping()
	for i := range m.Len() {
		k, val := m.Index(i)
		var f *structField
		if k.Kind == ir.StringKind {
			f = info.normal[k.Str]
		}
		switch {
		case f != nil:
			child := path.Map(k.Str)
			if err := d.decode(val, rv.FieldByIndex(f.index), &child, false); err != nil {
				return err
			}
			seen[k.Str] = true
		case len(info.flattens) > 0:
			pool.Append(k, val)
		default:
			d.unused(path, k, val)
		}
	}

	for _, f := range info.order {
		if f.flatten || seen[f.name] {
			continue
		}
		fv := rv.FieldByIndex(f.index)
		if a, ok := fv.Addr().Interface().(absentable); ok {
			a.unmarshalAbsent()
			continue
		}
		if f.optional || fv.Kind() == reflect.Pointer {
			continue
		}
		return &ir.ShapeError{
			Msg:      fmt.Sprintf("missing field `%s`", f.name),
			Path:     path.String(),
			NodeSpan: uv.Span,
		}
	}

	for _, f := range info.flattens {
		rest := ir.FromMapping(pool).WithSpan(uv.Span)
		next := ir.NewMapping()
		sub := *d
		sub.opts.unusedKey = func(_ *ir.Path, k, val *ir.Value) {
			next.Append(k, val)
		}
		if err := sub.decode(rest, rv.FieldByIndex(f.index), path, true); err != nil {
			return err
		}
		pool = next
	}
	if len(info.flattens) > 0 {
		for i := range pool.Len() {
			k, val := pool.Index(i)
			d.unused(path, k, val)
		}
	}
	return nil
}
