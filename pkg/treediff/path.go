package treediff

import (
	"regexp"
	"strconv"
	"strings"
)

// identPattern matches keys that can be rendered with dot notation.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Segment is one step of a Path: a mapping key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a location within a value tree. Paths are immutable and
// share their prefix: Key and Index allocate one node and never modify the
// receiver, so extending a path is O(1) at any depth.
type Path struct {
	node *pathNode
}

type pathNode struct {
	parent *pathNode
	seg    Segment
	depth  int
}

// Root returns the empty path, rendered as "$".
func Root() Path {
	return Path{}
}

// Key returns the path extended with a mapping key.
func (p Path) Key(key string) Path {
	return p.with(Segment{Key: key})
}

// Index returns the path extended with a sequence index.
func (p Path) Index(i int) Path {
	return p.with(Segment{Index: i, IsIndex: true})
}

func (p Path) with(s Segment) Path {
	return Path{node: &pathNode{parent: p.node, seg: s, depth: p.Depth() + 1}}
}

// Segments returns the path segments from the root outwards.
func (p Path) Segments() []Segment {
	out := make([]Segment, p.Depth())
	for n := p.node; n != nil; n = n.parent {
		out[n.depth-1] = n.seg
	}
	return out
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	if p.node == nil {
		return 0
	}
	return p.node.depth
}

// String renders the path using JSONPath conventions, e.g. $.items[2].price.
// Keys that are not plain identifiers are bracket-quoted: $["a.b"].
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p.Segments() {
		switch {
		case s.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		case identPattern.MatchString(s.Key):
			b.WriteByte('.')
			b.WriteString(s.Key)
		default:
			b.WriteByte('[')
			b.WriteString(strconv.Quote(s.Key))
			b.WriteByte(']')
		}
	}
	return b.String()
}
