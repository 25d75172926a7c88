package treediff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Value is a sealed interface for nodes of a comparison tree.
// Only Null, Bool, Number, String, Sequence, Mapping, and Opaque implement it.
type Value interface {
	Kind() Kind
	String() string
	treeValue()
}

// Null is the null value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Number is a numeric value. Literal keeps the source text when the number
// was parsed from a document, so reports can show what the fixture said.
type Number struct {
	Float   float64
	Literal string
}

// String is a text value.
type String string

// Sequence is an ordered list of values.
type Sequence []Value

// Opaque wraps a value that has no special comparison handling.
// Two opaque values match when their wrapped values are deeply equal.
type Opaque struct {
	V any
}

func (Null) treeValue()     {}
func (Bool) treeValue()     {}
func (Number) treeValue()   {}
func (String) treeValue()   {}
func (Sequence) treeValue() {}
func (*Mapping) treeValue() {}
func (Opaque) treeValue()   {}

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Number) Kind() Kind   { return KindNumber }
func (String) Kind() Kind   { return KindString }
func (Sequence) Kind() Kind { return KindSequence }
func (*Mapping) Kind() Kind { return KindMapping }
func (Opaque) Kind() Kind   { return KindOpaque }

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (n Number) String() string {
	if n.Literal != "" {
		return n.Literal
	}
	return formatFloat(n.Float)
}

func (s String) String() string { return strconv.Quote(string(s)) }

func (s Sequence) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(render(v))
	}
	buf.WriteByte(']')
	return buf.String()
}

func (o Opaque) String() string { return fmt.Sprintf("<%T %v>", o.V, o.V) }

// NewNull returns the null value.
func NewNull() Null { return Null{} }

// NewBool creates a Bool value.
func NewBool(b bool) Bool { return Bool(b) }

// NewNumber creates a Number from a float.
func NewNumber(f float64) Number { return Number{Float: f} }

// NewInt creates a Number from an integer, keeping its exact decimal text.
func NewInt(n int64) Number {
	return Number{Float: float64(n), Literal: strconv.FormatInt(n, 10)}
}

// NewNumberLiteral parses a numeric literal (JSON number syntax) into a Number.
func NewNumberLiteral(lit string) (Number, error) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		// ParseFloat reports out-of-range literals with a usable ±Inf.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return Number{}, fmt.Errorf("invalid number literal %q: %w", lit, err)
		}
	}
	return Number{Float: f, Literal: lit}, nil
}

// NewString creates a String value.
func NewString(s string) String { return String(s) }

// NewSequence creates a Sequence from values.
func NewSequence(vals ...Value) Sequence { return Sequence(vals) }

// NewOpaque wraps an arbitrary value.
func NewOpaque(v any) Opaque { return Opaque{V: v} }

// render formats a value for diagnostics, including absent (nil) values.
func render(v Value) string {
	if v == nil {
		return "<absent>"
	}
	return v.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// MarshalValue renders a value as JSON, preserving mapping key order.
// Non-finite numbers render as the strings "NaN", "Infinity" and "-Infinity".
func MarshalValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalInto(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalInto(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Number:
		if math.IsNaN(val.Float) || math.IsInf(val.Float, 0) {
			buf.WriteString(strconv.Quote(formatFloat(val.Float)))
			return nil
		}
		if val.Literal != "" && json.Valid([]byte(val.Literal)) {
			buf.WriteString(val.Literal)
			return nil
		}
		buf.WriteString(strconv.FormatFloat(val.Float, 'g', -1, 64))
	case String:
		b, err := json.Marshal(string(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case Sequence:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalInto(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Mapping:
		buf.WriteByte('{')
		for i, key := range val.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			elem, _ := val.Get(key)
			if err := marshalInto(buf, elem); err != nil {
				return fmt.Errorf("%q: %w", key, err)
			}
		}
		buf.WriteByte('}')
	case Opaque:
		b, err := json.Marshal(val.V)
		if err != nil {
			return fmt.Errorf("opaque %T: %w", val.V, err)
		}
		buf.Write(b)
	default:
		return fmt.Errorf("unknown value type %T", v)
	}
	return nil
}
