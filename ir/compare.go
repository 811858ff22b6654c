package ir

// Equal reports structural equality of two values, ignoring spans.
// Mappings compare order-insensitively: they are equal when they hold the
// same key set with pairwise equal values.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NullKind:
		return true
	case BoolKind:
		return a.Bool == b.Bool
	case NumberKind:
		return a.Number.Equal(b.Number)
	case StringKind:
		return a.Str == b.Str
	case SequenceKind:
		if len(a.Seq) != len(b.Seq) {
			return false
		}
		for i := range a.Seq {
			if !Equal(a.Seq[i], b.Seq[i]) {
				return false
			}
		}
		return true
	case MappingKind:
		if a.Map.Len() != b.Map.Len() {
			return false
		}
		for i := range a.Map.Len() {
			k, v := a.Map.Index(i)
			if !Equal(b.Map.Get(k), v) {
				return false
			}
		}
		return true
	case TaggedKind:
		return a.Tag.TagName() == b.Tag.TagName() && Equal(a.Tag.Value, b.Tag.Value)
	default:
		return false
	}
}
