package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCUE  = "cue"
)

// FormatOf returns the document format for a file name, or "" when the
// extension is not supported.
func FormatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	}
	return ""
}

// LoadFile reads and decodes a data file, choosing the format by extension.
func LoadFile(path string) (treediff.Value, error) {
	format := FormatOf(path)
	if format == "" {
		return nil, fmt.Errorf("%s: unsupported file extension %q", path, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := Decode(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Decode parses data in the given format. Mapping keys keep their declared
// order in every format. The name is used in CUE positions only.
func Decode(data []byte, format, name string) (treediff.Value, error) {
	switch format {
	case FormatJSON:
		return treediff.ParseJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatCUE:
		return decodeCUE(data, name)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func decodeYAML(data []byte) (treediff.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind == 0 {
		return treediff.Null{}, nil // empty document
	}
	d := &yamlDecoder{
		active:  make(map[*yaml.Node]bool),
		anchors: make(map[*yaml.Node]anchored),
		limit:   max(minYAMLNodeLimit, yamlNodesPerByte*len(data)),
	}
	return d.decode(&doc, treediff.Root())
}

// Alias expansion is bounded by the number of nodes the decoded tree holds
// once every alias is counted in full.
const (
	minYAMLNodeLimit = 400000
	yamlNodesPerByte = 100
)

type anchored struct {
	value treediff.Value
	nodes int
}

type yamlDecoder struct {
	// Anchors being expanded. Re-entering one means the document is cyclic.
	active map[*yaml.Node]bool
	// Decoded anchors. Values are immutable, so aliases share them.
	anchors map[*yaml.Node]anchored
	nodes   int
	limit   int
}

func (d *yamlDecoder) decode(n *yaml.Node, path treediff.Path) (treediff.Value, error) {
	if n.Kind == yaml.AliasNode {
		if d.active[n.Alias] {
			return nil, &treediff.StructuralError{Path: path.String(), Reason: "cyclic reference"}
		}
		return d.decode(n.Alias, path)
	}
	if n.Anchor == "" {
		return d.decodeNode(n, path)
	}
	if a, ok := d.anchors[n]; ok {
		if err := d.count(a.nodes, path); err != nil {
			return nil, err
		}
		return a.value, nil
	}

	d.active[n] = true
	start := d.nodes
	v, err := d.decodeNode(n, path)
	delete(d.active, n)
	if err != nil {
		return nil, err
	}
	d.anchors[n] = anchored{value: v, nodes: d.nodes - start}
	return v, nil
}

func (d *yamlDecoder) count(nodes int, path treediff.Path) error {
	d.nodes += nodes
	if d.nodes > d.limit {
		return &treediff.StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("alias expansion exceeds %d nodes", d.limit),
		}
	}
	return nil
}

func (d *yamlDecoder) decodeNode(n *yaml.Node, path treediff.Path) (treediff.Value, error) {
	if err := d.count(1, path); err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return treediff.Null{}, nil
		}
		return d.decode(n.Content[0], path)

	case yaml.MappingNode:
		if err := treediff.CheckNesting(path); err != nil {
			return nil, err
		}
		pairs := make([]treediff.Pair, 0, len(n.Content)/2)
		seen := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, &treediff.StructuralError{
					Path:   path.String(),
					Reason: fmt.Sprintf("mapping keys must be strings (line %d)", keyNode.Line),
				}
			}
			key := keyNode.Value
			child := path.Key(key)
			if seen[key] {
				return nil, &treediff.StructuralError{Path: child.String(), Reason: "duplicate mapping key"}
			}
			seen[key] = true
			v, err := d.decode(n.Content[i+1], child)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, treediff.P(key, v))
		}
		return treediff.NewMapping(pairs...), nil

	case yaml.SequenceNode:
		if err := treediff.CheckNesting(path); err != nil {
			return nil, err
		}
		seq := make(treediff.Sequence, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := d.decode(item, path.Index(i))
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil

	case yaml.ScalarNode:
		return decodeYAMLScalar(n, path)
	}
	return nil, fmt.Errorf("invalid YAML at %s: unexpected node kind %d", path, n.Kind)
}

func decodeYAMLScalar(n *yaml.Node, path treediff.Path) (treediff.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return treediff.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("invalid YAML at %s: %w", path, err)
		}
		return treediff.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return treediff.NewInt(i), nil
		}
		// Out of int64 range: keep the decimal text.
		num, err := treediff.NewNumberLiteral(strings.ReplaceAll(n.Value, "_", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid YAML at %s: %w", path, err)
		}
		return num, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid YAML at %s: %w", path, err)
		}
		// Integers beyond int64 resolve as floats; keep their digits.
		if json.Valid([]byte(n.Value)) {
			if num, err := treediff.NewNumberLiteral(n.Value); err == nil {
				return num, nil
			}
		}
		return treediff.NewNumber(f), nil
	}
	// Strings, timestamps and binary are compared as text.
	return treediff.String(n.Value), nil
}

func decodeCUE(data []byte, name string) (treediff.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("incomplete CUE value: %w", err)
	}
	return fromCUE(v, treediff.Root())
}

func fromCUE(v cue.Value, path treediff.Path) (treediff.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return treediff.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		return treediff.Bool(b), nil
	case cue.IntKind, cue.FloatKind:
		lit, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		num, err := treediff.NewNumberLiteral(string(lit))
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		return num, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		return treediff.String(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		return treediff.NewOpaque(b), nil
	case cue.ListKind:
		if err := treediff.CheckNesting(path); err != nil {
			return nil, err
		}
		iter, err := v.List()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		seq := treediff.Sequence{}
		for iter.Next() {
			item, err := fromCUE(iter.Value(), path.Index(len(seq)))
			if err != nil {
				return nil, err
			}
			seq = append(seq, item)
		}
		return seq, nil
	case cue.StructKind:
		if err := treediff.CheckNesting(path); err != nil {
			return nil, err
		}
		iter, err := v.Fields()
		if err != nil {
			return nil, fmt.Errorf("invalid CUE at %s: %w", path, err)
		}
		var pairs []treediff.Pair
		for iter.Next() {
			key := iter.Label()
			item, err := fromCUE(iter.Value(), path.Key(key))
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, treediff.P(key, item))
		}
		return treediff.NewMapping(pairs...), nil
	}
	return nil, &treediff.StructuralError{
		Path:   path.String(),
		Reason: fmt.Sprintf("unrepresentable CUE value of kind %s", v.Kind()),
	}
}
