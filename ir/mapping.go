package ir

// Mapping is an insertion-ordered sequence of key/value pairs. Key
// uniqueness is by structural equality, not identity; enforcing it is the
// caller's job (the parser consults its duplicate-key policy before
// inserting).
type Mapping struct {
	keys   []*Value
	values []*Value
}

func NewMapping() *Mapping {
	return &Mapping{}
}

func (m *Mapping) Len() int {
	return len(m.keys)
}

// Append adds a pair without checking for an existing equal key.
func (m *Mapping) Append(key, value *Value) {
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Index returns the i-th pair in insertion order.
func (m *Mapping) Index(i int) (key, value *Value) {
	return m.keys[i], m.values[i]
}

// IndexOf returns the position of the first key structurally equal to k,
// or -1.
func (m *Mapping) IndexOf(k *Value) int {
	for i, key := range m.keys {
		if Equal(key, k) {
			return i
		}
	}
	return -1
}

// Get returns the value stored under a key structurally equal to k, or nil.
func (m *Mapping) Get(k *Value) *Value {
	if i := m.IndexOf(k); i >= 0 {
		return m.values[i]
	}
	return nil
}

// GetString returns the value stored under a string key, or nil.
func (m *Mapping) GetString(key string) *Value {
	for i, k := range m.keys {
		if k.Kind == StringKind && k.Str == key {
			return m.values[i]
		}
	}
	return nil
}

// SetAt replaces the value at position i.
func (m *Mapping) SetAt(i int, value *Value) {
	m.values[i] = value
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []*Value {
	res := make([]*Value, len(m.keys))
	copy(res, m.keys)
	return res
}

// Pairs calls f for each pair in insertion order until f returns false.
func (m *Mapping) Pairs(f func(key, value *Value) bool) {
	for i := range m.keys {
		if !f(m.keys[i], m.values[i]) {
			return
		}
	}
}

func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	res := &Mapping{
		keys:   make([]*Value, len(m.keys)),
		values: make([]*Value, len(m.values)),
	}
	for i := range m.keys {
		res.keys[i] = m.keys[i].Clone()
		res.values[i] = m.values[i].Clone()
	}
	return res
}
