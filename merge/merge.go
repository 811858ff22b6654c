// Package merge expands `<<` merge keys into flat mappings.
package merge

import (
	"fmt"

	"github.com/spanyaml/spanyaml/ir"
)

// MergeKey is the reserved mapping key naming mappings to inline.
const MergeKey = "<<"

// Apply expands merge keys depth-first over the whole tree, mutating
// mappings in place. A merge key's value must be a mapping or a sequence of
// mappings (possibly behind tags or aliases). Explicit keys always win over
// merged ones, and earlier merge sources win over later ones. Applying
// merge is an explicit step; parsing never does it implicitly.
func Apply(v *ir.Value) error {
	root := ir.RootPath()
	return apply(v, &root)
}

func apply(v *ir.Value, path *ir.Path) error {
	switch v.Kind {
	case ir.SequenceKind:
		for i, e := range v.Seq {
			child := path.Seq(i)
			if err := apply(e, &child); err != nil {
				return err
			}
		}
		return nil
	case ir.TaggedKind:
		return apply(v.Tag.Value, path)
	case ir.MappingKind:
		// Children first, so merges nested inside merge sources are
		// already flat when the sources are copied.
		for i := range v.Map.Len() {
			k, val := v.Map.Index(i)
			child := entryPath(path, k)
			if err := apply(val, &child); err != nil {
				return err
			}
		}
		return expand(v, path)
	default:
		return nil
	}
}

func entryPath(path *ir.Path, key *ir.Value) ir.Path {
	if key.Kind == ir.StringKind {
		return path.Map(key.Str)
	}
	return path.Unknown()
}

func expand(v *ir.Value, path *ir.Path) error {
	m := v.Map
	found := false
	for _, k := range m.Keys() {
		if k.Kind == ir.StringKind && k.Str == MergeKey {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	out := ir.NewMapping()
	var sources []*ir.Value
	for i := range m.Len() {
		k, val := m.Index(i)
		if k.Kind != ir.StringKind || k.Str != MergeKey {
			out.Append(k, val)
			continue
		}
		uval := val.Untag()
		switch uval.Kind {
		case ir.MappingKind:
			sources = append(sources, uval)
		case ir.SequenceKind:
			for _, e := range uval.Seq {
				ue := e.Untag()
				if ue.Kind != ir.MappingKind {
					return mergeTargetError(e, path)
				}
				sources = append(sources, ue)
			}
		default:
			return mergeTargetError(val, path)
		}
	}
	for _, src := range sources {
		for i := range src.Map.Len() {
			k, val := src.Map.Index(i)
			if out.Get(k) == nil {
				out.Append(k, val)
			}
		}
	}
	v.Map = out
	return nil
}

func mergeTargetError(v *ir.Value, path *ir.Path) error {
	return &ir.ParseError{
		Msg:      fmt.Sprintf("expected a mapping or list of mappings to merge at %s", path),
		NodeSpan: v.Span,
	}
}
