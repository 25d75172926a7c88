package fixture

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AndreyAkinshin/treediff/internal/schema"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// FileRefKey marks a mapping that is replaced by the contents of a file:
// {"$file": "data/big.json"}.
const FileRefKey = "$file"

type caseMeta struct {
	Description string                   `json:"description"`
	Skip        bool                     `json:"skip"`
	Tags        []string                 `json:"tags"`
	Policy      *treediff.PolicyOverride `json:"policy"`
}

// LoadSuite loads all cases of a suite directory under fixturesDir whose
// file names match pattern. Cases are sorted by name.
func LoadSuite(fixturesDir, suite, pattern string) ([]Case, error) {
	suiteDir := filepath.Join(fixturesDir, suite)

	if _, err := os.Stat(suiteDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("suite directory not found: %s", suiteDir)
	}

	matches, err := findMatches(suiteDir, pattern)
	if err != nil {
		return nil, err
	}

	cases := make([]Case, 0, len(matches))
	for _, path := range matches {
		c, err := LoadCase(path)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w", suite, err)
		}
		rel, err := filepath.Rel(suiteDir, path)
		if err != nil {
			return nil, err
		}
		c.Name = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		c.Suite = suite
		cases = append(cases, *c)
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Name < cases[j].Name
	})

	return cases, nil
}

// ListSuites returns the sorted names of the suite directories under
// fixturesDir. Directories starting with "_" or "." are not suites.
func ListSuites(fixturesDir string) ([]string, error) {
	entries, err := os.ReadDir(fixturesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures directory: %w", err)
	}

	var suites []string
	for _, entry := range entries {
		if entry.IsDir() && !skipDir(entry.Name()) {
			suites = append(suites, entry.Name())
		}
	}
	sort.Strings(suites)
	return suites, nil
}

// LoadCase loads a single case document. The document must be a mapping
// with an "expected" member and is validated against the fixture schema
// before $file references are resolved.
func LoadCase(path string) (*Case, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(*treediff.Mapping)
	if !ok {
		return nil, fmt.Errorf("%s: case must be a mapping, got %s", path, doc.Kind())
	}

	raw, err := treediff.MarshalValue(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := schema.ValidateFixture(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var meta caseMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	resolve := func(field string) (treediff.Value, bool, error) {
		v, ok := m.Get(field)
		if !ok {
			return nil, false, nil
		}
		v, err := resolveFileRefs(v, baseDir)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %s: %w", path, field, err)
		}
		return v, true, nil
	}

	expected, _, err := resolve("expected")
	if err != nil {
		return nil, err
	}
	actual, hasActual, err := resolve("actual")
	if err != nil {
		return nil, err
	}
	input, _, err := resolve("input")
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	return &Case{
		Name:        strings.TrimSuffix(name, filepath.Ext(name)),
		File:        path,
		Description: meta.Description,
		Input:       input,
		Expected:    expected,
		Actual:      actual,
		HasActual:   hasActual,
		Skip:        meta.Skip,
		Tags:        meta.Tags,
		Override:    meta.Policy,
	}, nil
}

// findMatches returns the supported case files under dir whose base names
// match the glob pattern, sorted. Directories starting with "_" or "." are
// skipped so they can hold $file data.
func findMatches(dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if FormatOf(path) == "" {
			return nil
		}
		matched, _ := filepath.Match(pattern, d.Name())
		if matched {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// resolveFileRefs replaces every {"$file": "..."} mapping in v with the
// referenced file's contents.
func resolveFileRefs(v treediff.Value, baseDir string) (treediff.Value, error) {
	switch val := v.(type) {
	case *treediff.Mapping:
		if ref, ok := fileRef(val); ok {
			return loadFileRef(ref, baseDir)
		}
		pairs := make([]treediff.Pair, 0, val.Len())
		for _, p := range val.Pairs() {
			resolved, err := resolveFileRefs(p.Value, baseDir)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, treediff.P(p.Key, resolved))
		}
		return treediff.NewMapping(pairs...), nil

	case treediff.Sequence:
		out := make(treediff.Sequence, len(val))
		for i, item := range val {
			resolved, err := resolveFileRefs(item, baseDir)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	default:
		return v, nil
	}
}

func fileRef(m *treediff.Mapping) (string, bool) {
	if m.Len() != 1 {
		return "", false
	}
	v, ok := m.Get(FileRefKey)
	if !ok {
		return "", false
	}
	s, ok := v.(treediff.String)
	return string(s), ok
}

// loadFileRef loads a file referenced by $file. JSON, YAML and CUE files
// are decoded. Other files become text, or opaque bytes when they are not
// valid UTF-8.
func loadFileRef(ref, baseDir string) (treediff.Value, error) {
	if strings.Contains(ref, "..") || !filepath.IsLocal(ref) {
		return nil, fmt.Errorf("$file path escapes the case directory: %s", ref)
	}

	path := filepath.Join(baseDir, ref)

	// Verify the resolved path is still within baseDir
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return nil, fmt.Errorf("$file path escapes the case directory: %s", ref)
	}

	if FormatOf(path) != "" {
		v, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("$file %q: %w", ref, err)
		}
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("$file %q: %w", ref, err)
	}
	if utf8.Valid(data) {
		return treediff.String(data), nil
	}
	return treediff.NewOpaque(data), nil
}
