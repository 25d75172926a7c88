package fixture

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a.json":     FormatJSON,
		"a.JSON":     FormatJSON,
		"a.yaml":     FormatYAML,
		"b/c.yml":    FormatYAML,
		"orders.cue": FormatCUE,
		"notes.txt":  "",
		"no_ext":     "",
		"x.json.bak": "",
	}
	for name, want := range tests {
		assert.Equal(t, want, FormatOf(name), name)
	}
}

func TestDecode_KeyOrderIsPreserved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		data   string
	}{
		{FormatJSON, `{"z": 1, "a": {"y": true, "b": null}, "m": ["x", 2.5]}`},
		{FormatYAML, "z: 1\na:\n  y: true\n  b: null\nm: [x, 2.5]\n"},
		{FormatCUE, "z: 1\na: {\n\ty: true\n\tb: null\n}\nm: [\"x\", 2.5]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			v, err := Decode([]byte(tt.data), tt.format, "doc."+tt.format)
			require.NoError(t, err)
			assert.Equal(t, `{"z":1,"a":{"y":true,"b":null},"m":["x",2.5]}`, v.String())
		})
	}
}

func TestDecode_FormatsCompareEqual(t *testing.T) {
	t.Parallel()

	fromJSON, err := Decode([]byte(`{"n": 3, "f": 0.1, "s": "x", "l": [1, 2]}`), FormatJSON, "a.json")
	require.NoError(t, err)
	fromYAML, err := Decode([]byte("n: 3\nf: 0.1\ns: x\nl: [1, 2]\n"), FormatYAML, "a.yaml")
	require.NoError(t, err)
	fromCUE, err := Decode([]byte("n: 3\nf: 0.1\ns: \"x\"\nl: [1, 2]\n"), FormatCUE, "a.cue")
	require.NoError(t, err)

	for _, other := range []treediff.Value{fromYAML, fromCUE} {
		report, err := treediff.Compare(fromJSON, other, treediff.DefaultPolicy())
		require.NoError(t, err)
		assert.True(t, report.Match(), report.String())
	}
}

func TestDecodeYAML_Scalars(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte(`
null_value: ~
yes_bool: true
hex: 0x1F
big: 123456789012345678901234567890
float: 1.5e3
inf: .inf
nan: .nan
quoted: "42"
date: 2024-01-02
`), FormatYAML, "s.yaml")
	require.NoError(t, err)
	m := v.(*treediff.Mapping)

	get := func(key string) treediff.Value {
		t.Helper()
		val, ok := m.Get(key)
		require.True(t, ok, key)
		return val
	}

	assert.Equal(t, treediff.KindNull, get("null_value").Kind())
	assert.Equal(t, treediff.Bool(true), get("yes_bool"))
	assert.Equal(t, treediff.NewInt(31), get("hex"))
	assert.Equal(t, "123456789012345678901234567890", get("big").String())
	assert.Equal(t, 1500.0, get("float").(treediff.Number).Float)
	assert.True(t, math.IsInf(get("inf").(treediff.Number).Float, 1))
	assert.True(t, math.IsNaN(get("nan").(treediff.Number).Float))
	assert.Equal(t, treediff.String("42"), get("quoted"))
	assert.Equal(t, treediff.String("2024-01-02"), get("date"))
}

func TestDecodeYAML_AliasesExpand(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte("base: &b {x: 1}\ncopy: *b\n"), FormatYAML, "a.yaml")
	require.NoError(t, err)
	assert.Equal(t, `{"base":{"x":1},"copy":{"x":1}}`, v.String())
}

// fanOutYAML builds levels of anchored lists where each level repeats the
// previous one ten times.
func fanOutYAML(levels int) []byte {
	var b strings.Builder
	b.WriteString("l0: &l0 [" + strings.TrimSuffix(strings.Repeat(`"x", `, 10), ", ") + "]\n")
	for i := 1; i < levels; i++ {
		alias := fmt.Sprintf("*l%d", i-1)
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.TrimSuffix(strings.Repeat(alias+", ", 10), ", "))
	}
	return []byte(b.String())
}

func TestDecodeYAML_AliasFanOut(t *testing.T) {
	t.Parallel()

	v, err := Decode(fanOutYAML(4), FormatYAML, "fan.yaml")
	require.NoError(t, err)
	m := v.(*treediff.Mapping)
	l3, ok := m.Get("l3")
	require.True(t, ok)
	require.Len(t, l3, 10)
	assert.Len(t, l3.(treediff.Sequence)[9].(treediff.Sequence)[9], 10)
}

func TestDecodeYAML_AliasExpansionLimit(t *testing.T) {
	t.Parallel()

	data := fanOutYAML(6)
	require.Less(t, len(data), 400)

	_, err := Decode(data, FormatYAML, "bomb.yaml")
	var se *treediff.StructuralError
	require.True(t, errors.As(err, &se), "err = %v", err)
	assert.Contains(t, se.Reason, "alias expansion exceeds 400000 nodes")
	assert.True(t, strings.HasPrefix(se.Path, "$.l5"), se.Path)
}

func TestDecode_Nesting(t *testing.T) {
	t.Parallel()

	deep := strings.Repeat("[", treediff.MaxNestingDepth+1) + strings.Repeat("]", treediff.MaxNestingDepth+1)
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(deep), format, "deep")
			assert.Error(t, err)
		})
	}
}

func TestDecodeYAML_EmptyDocument(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte(""), FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, treediff.KindNull, v.Kind())
}

func TestDecode_StructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		data   string
		path   string
	}{
		{"json duplicate", FormatJSON, `{"a": 1, "a": 2}`, "$.a"},
		{"yaml duplicate", FormatYAML, "a:\n  k: 1\n  k: 2\n", "$.a.k"},
		{"yaml complex key", FormatYAML, "? [1, 2]\n: x\n", "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.data), tt.format, "doc")
			var se *treediff.StructuralError
			require.True(t, errors.As(err, &se), "err = %v", err)
			assert.Equal(t, tt.path, se.Path)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"json syntax", FormatJSON, `{"a":`},
		{"yaml syntax", FormatYAML, "a: [1, 2\n"},
		{"cue syntax", FormatCUE, "a: {"},
		{"cue conflict", FormatCUE, "a: 1\na: 2\n"},
		{"cue incomplete", FormatCUE, "a: int\n"},
		{"unknown format", "toml", "a = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.data), tt.format, "doc")
			assert.Error(t, err)
		})
	}
}

func TestDecodeCUE_BytesAndDefinitions(t *testing.T) {
	t.Parallel()

	v, err := Decode([]byte("#Hidden: string\n_private: 1\nraw: 'ab'\nn: 1 + 2\n"), FormatCUE, "a.cue")
	require.NoError(t, err)
	m := v.(*treediff.Mapping)

	assert.Equal(t, []string{"raw", "n"}, m.Keys())
	raw, _ := m.Get("raw")
	assert.Equal(t, treediff.KindOpaque, raw.Kind())
	n, _ := m.Get("n")
	assert.Equal(t, "3", n.String())
}
