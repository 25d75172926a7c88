package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

const fixturesDir = "testdata/fixtures"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestListSuites(t *testing.T) {
	t.Parallel()

	suites, err := ListSuites(fixturesDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty_suite", "orders"}, suites)

	_, err = ListSuites(filepath.Join(fixturesDir, "missing"))
	assert.Error(t, err)
}

func TestLoadSuite_Orders(t *testing.T) {
	t.Parallel()

	cases, err := LoadSuite(fixturesDir, "orders", "*")
	require.NoError(t, err)

	var names []string
	for _, c := range cases {
		names = append(names, c.Name)
		assert.Equal(t, "orders", c.Suite)
	}
	assert.Equal(t, []string{"basic", "lenient", "nested/pending", "prices"}, names)

	basic := cases[0]
	assert.Equal(t, "orders/basic", basic.ID())
	assert.Equal(t, "order totals within tolerance", basic.Description)
	assert.True(t, basic.HasTag("smoke"))
	assert.True(t, basic.HasActual)
	items, _ := basic.Expected.(*treediff.Mapping).Get("items")
	assert.Equal(t, `[{"sku":"a","qty":1},{"sku":"b","qty":2}]`, items.String())

	pending := cases[2]
	assert.True(t, pending.Skip)
	assert.False(t, pending.HasActual)
	assert.Equal(t, `{"order":9}`, pending.Input.String())
}

func TestLoadSuite_CasesMatchUnderTheirPolicies(t *testing.T) {
	t.Parallel()

	cases, err := LoadSuite(fixturesDir, "orders", "*")
	require.NoError(t, err)

	for _, c := range cases {
		if !c.HasActual {
			continue
		}
		t.Run(c.Name, func(t *testing.T) {
			policy, err := c.Policy(treediff.DefaultPolicy())
			require.NoError(t, err)
			report, err := treediff.Compare(c.Expected, c.Actual, policy)
			require.NoError(t, err)
			assert.True(t, report.Match(), report.String())
		})
	}
}

func TestLoadSuite_Pattern(t *testing.T) {
	t.Parallel()

	cases, err := LoadSuite(fixturesDir, "orders", "*.json")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "basic", cases[0].Name)
	assert.Equal(t, "nested/pending", cases[1].Name)

	_, err = LoadSuite(fixturesDir, "orders", "[")
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestLoadSuite_Empty(t *testing.T) {
	t.Parallel()

	cases, err := LoadSuite(fixturesDir, "empty_suite", "*")
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestLoadSuite_NotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadSuite(fixturesDir, "missing", "*")
	assert.ErrorContains(t, err, "suite directory not found")
}

func TestLoadSuite_BadCaseNamesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "s", "bad.json"), `{"actual": 1}`)

	_, err := LoadSuite(dir, "s", "*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `suite "s"`)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestLoadCase_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"not a mapping", "a.json", `[1, 2]`, "case must be a mapping"},
		{"missing expected", "b.json", `{"actual": 1}`, "expected"},
		{"unknown field", "c.yaml", "expected: 1\nexpect: 2\n", "expect"},
		{"bad policy value", "d.json", `{"expected": 1, "policy": {"array_order": "sorted"}}`, "array_order"},
		{"tags not strings", "e.json", `{"expected": 1, "tags": [1]}`, "tags"},
		{"unsupported extension", "f.toml", `expected = 1`, "unsupported file extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			_, err := LoadCase(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCase_FileRefs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "expected.yaml"), "a: 1\nb: [x]\n")
	writeFile(t, filepath.Join(dir, "data", "body.txt"), "hello")
	writeFile(t, filepath.Join(dir, "data", "blob.bin"), "\xff\xfe")
	writeFile(t, filepath.Join(dir, "case.json"), `{
		"expected": {"$file": "data/expected.yaml"},
		"actual": {"body": {"$file": "data/body.txt"}, "blob": {"$file": "data/blob.bin"}, "keep": {"$file": "x", "other": 1}}
	}`)

	c, err := LoadCase(filepath.Join(dir, "case.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":["x"]}`, c.Expected.String())

	actual := c.Actual.(*treediff.Mapping)
	body, _ := actual.Get("body")
	assert.Equal(t, treediff.String("hello"), body)
	blob, _ := actual.Get("blob")
	assert.Equal(t, treediff.KindOpaque, blob.Kind())
	keep, _ := actual.Get("keep")
	assert.Equal(t, `{"$file":"x","other":1}`, keep.String())
}

func TestLoadCase_FileRefTraversal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secret.json"), `{"token": "x"}`)

	for _, ref := range []string{"../secret.json", "/etc/passwd", "a/../../secret.json"} {
		path := filepath.Join(dir, "suite", "case.json")
		writeFile(t, path, `{"expected": {"$file": "`+ref+`"}}`)

		_, err := LoadCase(path)
		require.Error(t, err, ref)
		assert.True(t, strings.Contains(err.Error(), "escapes the case directory"), err.Error())
	}
}

func TestLoadCase_MissingFileRef(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "case.json")
	writeFile(t, path, `{"expected": {"$file": "nope.json"}}`)

	_, err := LoadCase(path)
	assert.ErrorContains(t, err, `$file "nope.json"`)
}
