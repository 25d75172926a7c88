// Package testhelper provides fixture loading and soft assertions for Go
// tests that check their output against treediff fixtures.
//
// Example usage in a Go test:
//
//	func TestQuote(t *testing.T) {
//	    root, err := testhelper.FindProjectRoot()
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//
//	    cases, err := testhelper.LoadTestSuite(root, "quote")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//
//	    for _, tc := range cases {
//	        t.Run(tc.Name, func(t *testing.T) {
//	            testhelper.AssertCase(t, &tc, buildQuote(tc.Input))
//	        })
//	    }
//	}
package testhelper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// TestCase is a single fixture loaded from a JSON file.
type TestCase struct {
	// Name is the case name (file name without extension).
	Name string

	// Suite is the suite name (directory name).
	Suite string

	// Input is the optional "input" tree handed to the code under test.
	Input treediff.Value

	// Expected is the "expected" tree.
	Expected treediff.Value

	// Description provides optional documentation.
	Description string

	// Skip marks the case as skipped.
	Skip bool

	// Tags provides optional categorization.
	Tags []string

	// Options holds the case's "policy" overrides.
	Options []treediff.Option
}

type caseMeta struct {
	Description string                   `json:"description"`
	Skip        bool                     `json:"skip"`
	Tags        []string                 `json:"tags"`
	Policy      *treediff.PolicyOverride `json:"policy"`
}

// LoadTestSuite loads all cases from <projectRoot>/tests/<suite>/*.json,
// sorted by name.
func LoadTestSuite(projectRoot, suite string) ([]TestCase, error) {
	pattern := filepath.Join(projectRoot, "tests", suite, "*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var cases []TestCase
	for _, f := range files {
		tc, err := LoadTestCase(f)
		if err != nil {
			return nil, err
		}
		tc.Suite = suite
		cases = append(cases, *tc)
	}

	return cases, nil
}

// LoadTestCase loads a single case from a JSON file. The document must be
// an object with an "expected" member.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := treediff.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, ok := doc.(*treediff.Mapping)
	if !ok {
		return nil, fmt.Errorf("%s: case must be a JSON object", path)
	}
	expected, ok := m.Get("expected")
	if !ok {
		return nil, fmt.Errorf("%s: missing \"expected\"", path)
	}

	var meta caseMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	tc := &TestCase{
		Name:        strings.TrimSuffix(filepath.Base(path), ".json"),
		Expected:    expected,
		Description: meta.Description,
		Skip:        meta.Skip,
		Tags:        meta.Tags,
		Options:     meta.Policy.Options(),
	}
	if input, ok := m.Get("input"); ok {
		tc.Input = input
	}
	return tc, nil
}

// FindProjectRoot walks up from the working directory to find .treediff/.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindProjectRootFrom(cwd)
}

// FindProjectRootFrom walks up from startDir to the first directory that
// contains a .treediff directory.
func FindProjectRootFrom(startDir string) (string, error) {
	dir := startDir

	for {
		info, err := os.Stat(filepath.Join(dir, ".treediff"))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", &ProjectNotFoundError{StartDir: startDir}
}

// ProjectNotFoundError indicates no .treediff directory was found.
type ProjectNotFoundError struct {
	StartDir string
}

func (e *ProjectNotFoundError) Error() string {
	return ".treediff directory not found (searched from " + e.StartDir + ")"
}

// ListSuites returns the names of all suites under <projectRoot>/tests.
func ListSuites(projectRoot string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(projectRoot, "tests"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var suites []string
	for _, entry := range entries {
		if entry.IsDir() {
			suites = append(suites, entry.Name())
		}
	}
	return suites, nil
}
