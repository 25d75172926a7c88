package testhelper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTestCase(t *testing.T) {
	t.Parallel()
	testFile := filepath.Join(t.TempDir(), "quote.json")
	writeFile(t, testFile, `{
		"description": "priced quote",
		"input": {"sku": "A-1"},
		"expected": {"price": 4.30198, "currency": "EUR"},
		"tags": ["pricing"],
		"policy": {"extra_keys": "lenient", "absolute_epsilon": 0.001}
	}`)

	tc, err := LoadTestCase(testFile)
	if err != nil {
		t.Fatalf("LoadTestCase() error = %v", err)
	}

	if tc.Name != "quote" {
		t.Errorf("Name = %q, want %q", tc.Name, "quote")
	}
	if tc.Description != "priced quote" {
		t.Errorf("Description = %q", tc.Description)
	}
	if tc.Suite != "" {
		t.Errorf("Suite = %q, want empty string", tc.Suite)
	}
	if len(tc.Tags) != 1 || tc.Tags[0] != "pricing" {
		t.Errorf("Tags = %v", tc.Tags)
	}
	if len(tc.Options) != 2 {
		t.Errorf("len(Options) = %d, want 2", len(tc.Options))
	}
	if tc.Input == nil || tc.Input.Kind() != treediff.KindMapping {
		t.Errorf("Input = %v", tc.Input)
	}
	m := tc.Expected.(*treediff.Mapping)
	if keys := m.Keys(); len(keys) != 2 || keys[0] != "price" {
		t.Errorf("Expected keys = %v, want declared order", keys)
	}
}

func TestLoadTestCase_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{`},
		{"not an object", `[1]`},
		{"missing expected", `{"input": {}}`},
		{"duplicate key", `{"expected": 1, "expected": 2}`},
		{"bad policy type", `{"expected": 1, "policy": {"max_depth": "deep"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "case.json")
			writeFile(t, path, tt.content)
			if _, err := LoadTestCase(path); err == nil {
				t.Error("LoadTestCase() succeeded")
			}
		})
	}
}

func TestLoadTestCase_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := LoadTestCase(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestLoadTestSuite(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tests", "math", "sub.json"), `{"expected": 2}`)
	writeFile(t, filepath.Join(root, "tests", "math", "add.json"), `{"expected": 1}`)
	writeFile(t, filepath.Join(root, "tests", "math", "notes.txt"), `ignored`)

	cases, err := LoadTestSuite(root, "math")
	if err != nil {
		t.Fatalf("LoadTestSuite() error = %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("len(cases) = %d, want 2", len(cases))
	}
	if cases[0].Name != "add" || cases[1].Name != "sub" {
		t.Errorf("names = %q, %q, want sorted", cases[0].Name, cases[1].Name)
	}
	for _, tc := range cases {
		if tc.Suite != "math" {
			t.Errorf("%s: Suite = %q", tc.Name, tc.Suite)
		}
	}
}

func TestListSuites(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tests", "a", "x.json"), `{"expected": 1}`)
	writeFile(t, filepath.Join(root, "tests", "b", "y.json"), `{"expected": 1}`)
	writeFile(t, filepath.Join(root, "tests", "README"), ``)

	suites, err := ListSuites(root)
	if err != nil {
		t.Fatalf("ListSuites() error = %v", err)
	}
	if len(suites) != 2 || suites[0] != "a" || suites[1] != "b" {
		t.Errorf("ListSuites() = %v", suites)
	}

	none, err := ListSuites(t.TempDir())
	if err != nil || none != nil {
		t.Errorf("ListSuites(empty) = %v, %v", none, err)
	}
}

func TestFindProjectRootFrom(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".treediff"), 0755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRootFrom(sub)
	if err != nil {
		t.Fatalf("FindProjectRootFrom() error = %v", err)
	}
	if got != root {
		t.Errorf("FindProjectRootFrom() = %q, want %q", got, root)
	}
}

func TestFindProjectRootFrom_NotFound(t *testing.T) {
	t.Parallel()
	start := t.TempDir()
	_, err := FindProjectRootFrom(start)

	var pnf *ProjectNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("err = %v, want *ProjectNotFoundError", err)
	}
	if pnf.StartDir != start {
		t.Errorf("StartDir = %q, want %q", pnf.StartDir, start)
	}
}
