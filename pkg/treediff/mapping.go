package treediff

import (
	"bytes"
	"fmt"
	"strconv"
)

// Mapping is an ordered set of unique string keys with values.
// Keys iterate in insertion (declared) order.
type Mapping struct {
	keys   []string
	values map[string]Value
}

// Pair is a key/value pair used to build a Mapping.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for Pair.
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewMapping creates a Mapping from pairs. A repeated key keeps its first
// position and takes the last value. Use NewMappingChecked to reject duplicates.
func NewMapping(pairs ...Pair) *Mapping {
	m := newMapping(len(pairs))
	for _, p := range pairs {
		m.set(p.Key, p.Value)
	}
	return m
}

// NewMappingChecked creates a Mapping and fails with a StructuralError
// when a key appears more than once.
func NewMappingChecked(pairs ...Pair) (*Mapping, error) {
	m := newMapping(len(pairs))
	for _, p := range pairs {
		if _, dup := m.values[p.Key]; dup {
			return nil, &StructuralError{
				Path:   Root().Key(p.Key).String(),
				Reason: "duplicate mapping key",
			}
		}
		m.set(p.Key, p.Value)
	}
	return m, nil
}

func (m *Mapping) set(key string, value Value) {
	if value == nil {
		value = Null{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in declared order. The returned slice is a copy.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Pairs returns the entries in declared order.
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.keys))
	for i, k := range m.keys {
		out[i] = Pair{Key: k, Value: m.values[k]}
	}
	return out
}

func (m *Mapping) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.Pairs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%s:%s", strconv.Quote(p.Key), render(p.Value))
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON renders the mapping as a JSON object in declared key order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	return MarshalValue(m)
}
