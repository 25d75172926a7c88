package treediff

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestFromAny(t *testing.T) {
	t.Parallel()

	seven := 7
	var nilPtr *int
	var nilMap map[string]any

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"string", "x", `"x"`},
		{"int8", int8(-5), "-5"},
		{"max uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"float32", float32(1.5), "1.5"},
		{"json number", json.Number("1.50"), "1.50"},
		{"pointer", &seven, "7"},
		{"nil pointer", nilPtr, "null"},
		{"nil map", nilMap, "null"},
		{"typed slice", []int{1, 2}, "[1,2]"},
		{"array", [2]string{"a", "b"}, `["a","b"]`},
		{"sorted keys", map[string]any{"b": 1, "a": []any{true, nil, "x"}}, `{"a":[true,null,"x"],"b":1}`},
		{"value passthrough", []any{NewInt(1), String("s")}, `[1,"s"]`},
		{"bytes are opaque", []byte("hi"), "<[]uint8 [104 105]>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := FromAny(tt.input)
			if err != nil {
				t.Fatalf("FromAny: %v", err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

type namedKey string

func TestFromAny_NamedStringKeys(t *testing.T) {
	t.Parallel()

	v, err := FromAny(map[namedKey]int{"y": 2, "x": 1})
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	m := v.(*Mapping)
	if !reflect.DeepEqual(m.Keys(), []string{"x", "y"}) {
		t.Errorf("Keys() = %v", m.Keys())
	}
}

func TestFromAny_Structs(t *testing.T) {
	t.Parallel()

	type point struct{ X, Y int }
	v, err := FromAny(point{1, 2})
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	if v.Kind() != KindOpaque {
		t.Errorf("Kind() = %s, want opaque", v.Kind())
	}
}

func TestFromAny_Errors(t *testing.T) {
	t.Parallel()

	cyclicMap := map[string]any{}
	cyclicMap["self"] = cyclicMap

	cyclicSlice := []any{nil}
	cyclicSlice[0] = cyclicSlice

	tests := []struct {
		name   string
		input  any
		path   string
		reason string
	}{
		{"channel", map[string]any{"c": make(chan int)}, "$.c", "unrepresentable value"},
		{"function", []any{func() {}}, "$[0]", "unrepresentable value"},
		{"int keys", map[int]string{1: "a"}, "$", "mapping keys must be strings"},
		{"cyclic map", cyclicMap, "$.self", "cyclic reference"},
		{"cyclic slice", cyclicSlice, "$[0]", "cyclic reference"},
		{"bad json number", json.Number("abc"), "$", "invalid number literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := FromAny(tt.input)
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StructuralError", err)
			}
			if se.Path != tt.path {
				t.Errorf("Path = %q, want %q", se.Path, tt.path)
			}
			if !strings.Contains(se.Reason, tt.reason) {
				t.Errorf("Reason = %q, want %q", se.Reason, tt.reason)
			}
		})
	}
}

func TestFromAny_SharedSliceIsNotCyclic(t *testing.T) {
	t.Parallel()

	shared := []any{1}
	if _, err := FromAny([]any{shared, shared}); err != nil {
		t.Fatalf("FromAny: %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	v, err := ParseJSON([]byte(`{"z":1,"a":[1.50,"x",true,null],"m":{}}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	m := v.(*Mapping)
	if !reflect.DeepEqual(m.Keys(), []string{"z", "a", "m"}) {
		t.Errorf("Keys() = %v, want declared order", m.Keys())
	}
	if got := v.String(); got != `{"z":1,"a":[1.50,"x",true,null],"m":{}}` {
		t.Errorf("String() = %q", got)
	}

	big, err := ParseJSON([]byte(`1e400`))
	if err != nil {
		t.Fatalf("ParseJSON(1e400): %v", err)
	}
	if n := big.(Number); !math.IsInf(n.Float, 1) || n.Literal != "1e400" {
		t.Errorf("1e400 parsed as %+v", n)
	}
}

func TestParseJSON_DuplicateKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		path  string
	}{
		{`{"a":1,"a":2}`, "$.a"},
		{`{"x":[{"k":1,"k":2}]}`, "$.x[0].k"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			_, err := ParseJSON([]byte(tt.input))
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StructuralError", err)
			}
			if se.Path != tt.path {
				t.Errorf("Path = %q, want %q", se.Path, tt.path)
			}
		})
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{``, `{`, `[1,]`, `1 2`, `{"a" 1}`, `}`} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseJSON([]byte(input)); err == nil {
				t.Errorf("ParseJSON(%q) succeeded", input)
			}
		})
	}
}

func deepJSON(depth int) []byte {
	return []byte(strings.Repeat("[", depth) + strings.Repeat("]", depth))
}

func TestParseJSON_Nesting(t *testing.T) {
	t.Parallel()

	t.Run("at the cap", func(t *testing.T) {
		t.Parallel()
		v, err := ParseJSON(deepJSON(MaxNestingDepth))
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if v.Kind() != KindSequence {
			t.Errorf("Kind = %v", v.Kind())
		}
	})

	for _, depth := range []int{MaxNestingDepth + 1, 50000} {
		t.Run(strconv.Itoa(depth), func(t *testing.T) {
			t.Parallel()
			_, err := ParseJSON(deepJSON(depth))
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StructuralError", err)
			}
			if se.Reason != "maximum depth 10000 exceeded" {
				t.Errorf("Reason = %q", se.Reason)
			}
			if strings.Count(se.Path, "[0]") != MaxNestingDepth {
				t.Errorf("error path has %d segments", strings.Count(se.Path, "[0]"))
			}
		})
	}

	t.Run("objects", func(t *testing.T) {
		t.Parallel()
		doc := strings.Repeat(`{"a":`, MaxNestingDepth+1) + "1" + strings.Repeat("}", MaxNestingDepth+1)
		_, err := ParseJSON([]byte(doc))
		var se *StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("err = %v, want *StructuralError", err)
		}
	})
}

func TestFromAny_Nesting(t *testing.T) {
	t.Parallel()

	build := func(depth int) any {
		var v any = 1
		for i := 0; i < depth; i++ {
			if i%2 == 0 {
				v = []any{v}
			} else {
				v = map[string]any{"k": v}
			}
		}
		return v
	}

	if _, err := FromAny(build(MaxNestingDepth)); err != nil {
		t.Fatalf("FromAny at the cap: %v", err)
	}
	_, err := FromAny(build(MaxNestingDepth + 1))
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StructuralError", err)
	}
	if !strings.Contains(se.Reason, "maximum depth") {
		t.Errorf("Reason = %q", se.Reason)
	}
}

func TestMarshalValue(t *testing.T) {
	t.Parallel()

	v := NewMapping(
		P("z", NewNumber(math.NaN())),
		P("a", Sequence{NewInt(1), NewNumber(math.Inf(-1)), String("x")}),
		P("n", nil),
	)
	b, err := MarshalValue(v)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	want := `{"z":"NaN","a":[1,"-Infinity","x"],"n":null}`
	if string(b) != want {
		t.Errorf("MarshalValue() = %s, want %s", b, want)
	}
}

func TestNewMappingChecked(t *testing.T) {
	t.Parallel()

	if _, err := NewMappingChecked(P("a", NewInt(1)), P("b", NewInt(2))); err != nil {
		t.Fatalf("NewMappingChecked: %v", err)
	}

	_, err := NewMappingChecked(P("a", NewInt(1)), P("a", NewInt(2)))
	var se *StructuralError
	if !errors.As(err, &se) || se.Path != "$.a" {
		t.Fatalf("err = %v, want duplicate key at $.a", err)
	}

	m := NewMapping(P("a", NewInt(1)), P("b", nil), P("a", NewInt(3)))
	if !reflect.DeepEqual(m.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys() = %v", m.Keys())
	}
	if v, _ := m.Get("a"); v.String() != "3" {
		t.Errorf("a = %s, want the last value", v)
	}
	if v, _ := m.Get("b"); v.Kind() != KindNull {
		t.Errorf("b = %v, want null", v)
	}
}
