package treediff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
)

// FromAny converts a native Go tree into a Value.
//
// Supported inputs are nil, bool, string, json.Number, all integer and
// float kinds, slices and arrays, maps with string keys, pointers to any
// of those, and Values themselves. Native maps have no declared order, so
// their keys are sorted. []byte, structs and complex numbers become
// Opaque. Channels, functions, non-string map keys and cyclic input are
// reported as *StructuralError.
func FromAny(v any) (Value, error) {
	c := &converter{seen: make(map[uintptr]bool)}
	return c.convert(reflect.ValueOf(v), Root())
}

// MustFromAny is like FromAny but panics on error. Intended for tests and
// literals known to be well-formed.
func MustFromAny(v any) Value {
	val, err := FromAny(v)
	if err != nil {
		panic("treediff.MustFromAny: " + err.Error())
	}
	return val
}

type converter struct {
	seen map[uintptr]bool
}

var (
	valueType  = reflect.TypeOf((*Value)(nil)).Elem()
	numberType = reflect.TypeOf(json.Number(""))
	bytesType  = reflect.TypeOf([]byte(nil))
)

func (c *converter) convert(rv reflect.Value, path Path) (Value, error) {
	if !rv.IsValid() {
		return Null{}, nil
	}
	if rv.Type().Implements(valueType) {
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return Null{}, nil
		}
		return rv.Interface().(Value), nil
	}
	if rv.Type() == numberType {
		n, err := NewNumberLiteral(rv.String())
		if err != nil {
			return nil, &StructuralError{Path: path.String(), Reason: err.Error()}
		}
		return n, nil
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return c.convert(rv.Elem(), path)
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return c.convert(rv.Elem(), path)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return Number{Float: float64(u), Literal: strconv.FormatUint(u, 10)}, nil
	case reflect.Float32, reflect.Float64:
		return NewNumber(rv.Float()), nil
	case reflect.Complex64, reflect.Complex128, reflect.Struct:
		return Opaque{V: rv.Interface()}, nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}
		if rv.Type() == bytesType {
			return Opaque{V: rv.Interface()}, nil
		}
		return c.convertList(rv, path, true)
	case reflect.Array:
		return c.convertList(rv, path, false)
	case reflect.Map:
		if rv.IsNil() {
			return Null{}, nil
		}
		return c.convertMap(rv, path)
	default:
		return nil, &StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("unrepresentable value of type %s", rv.Type()),
		}
	}
}

// track marks a reference type as being converted. The returned function
// clears the mark.
func (c *converter) track(rv reflect.Value, path Path) (func(), error) {
	ptr := rv.Pointer()
	if ptr == 0 {
		return func() {}, nil
	}
	if c.seen[ptr] {
		return nil, &StructuralError{Path: path.String(), Reason: "cyclic reference"}
	}
	c.seen[ptr] = true
	return func() { delete(c.seen, ptr) }, nil
}

func (c *converter) convertList(rv reflect.Value, path Path, reference bool) (Value, error) {
	if err := CheckNesting(path); err != nil {
		return nil, err
	}
	if reference && rv.Len() > 0 {
		untrack, err := c.track(rv, path)
		if err != nil {
			return nil, err
		}
		defer untrack()
	}
	seq := make(Sequence, rv.Len())
	for i := range seq {
		v, err := c.convert(rv.Index(i), path.Index(i))
		if err != nil {
			return nil, err
		}
		seq[i] = v
	}
	return seq, nil
}

func (c *converter) convertMap(rv reflect.Value, path Path) (Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, &StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("mapping keys must be strings, got %s", rv.Type().Key()),
		}
	}
	if err := CheckNesting(path); err != nil {
		return nil, err
	}
	untrack, err := c.track(rv, path)
	if err != nil {
		return nil, err
	}
	defer untrack()

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	m := newMapping(len(keys))
	for _, k := range keys {
		kv := reflect.ValueOf(k).Convert(rv.Type().Key())
		v, err := c.convert(rv.MapIndex(kv), path.Key(k))
		if err != nil {
			return nil, err
		}
		m.set(k, v)
	}
	return m, nil
}

func newMapping(capacity int) *Mapping {
	return &Mapping{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

// ParseJSON decodes a JSON document into a Value, preserving the declared
// order of object keys and the literal text of numbers. Duplicate object
// keys are reported as *StructuralError.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec, Root())
	if err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return nil, fmt.Errorf("invalid JSON: unexpected trailing data %v", tok)
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder, path Path) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
	}

	switch t := tok.(type) {
	case json.Delim:
		if err := CheckNesting(path); err != nil {
			return nil, err
		}
		switch t {
		case '{':
			return decodeJSONObject(dec, path)
		case '[':
			return decodeJSONArray(dec, path)
		}
		return nil, fmt.Errorf("invalid JSON at %s: unexpected %v", path, t)
	case string:
		return String(t), nil
	case json.Number:
		n, err := NewNumberLiteral(t.String())
		if err != nil {
			return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
		}
		return n, nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("invalid JSON at %s: unexpected token %v", path, tok)
}

func decodeJSONObject(dec *json.Decoder, path Path) (Value, error) {
	m := newMapping(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid JSON at %s: object key is %T", path, tok)
		}
		child := path.Key(key)
		if m.Has(key) {
			return nil, &StructuralError{Path: child.String(), Reason: "duplicate mapping key"}
		}
		v, err := decodeJSON(dec, child)
		if err != nil {
			return nil, err
		}
		m.set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
	}
	return m, nil
}

func decodeJSONArray(dec *json.Decoder, path Path) (Value, error) {
	seq := Sequence{}
	for dec.More() {
		v, err := decodeJSON(dec, path.Index(len(seq)))
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
	}
	return seq, nil
}
