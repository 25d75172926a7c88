// Package fixture loads comparison cases from JSON, YAML and CUE documents
// organised into suite directories.
package fixture

import (
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Case is a single comparison case loaded from a fixture document.
type Case struct {
	Name        string // Case name (path relative to the suite, without extension)
	Suite       string // Suite name (directory under the fixtures root)
	File        string // Full path to the case file
	Description string
	Input       treediff.Value // Optional input for an actual provider
	Expected    treediff.Value
	Actual      treediff.Value // Valid only when HasActual is set
	HasActual   bool
	Skip        bool
	Tags        []string
	Override    *treediff.PolicyOverride
}

// ID returns suite/name.
func (c *Case) ID() string {
	if c.Suite == "" {
		return c.Name
	}
	return c.Suite + "/" + c.Name
}

// Policy returns base with the case's overrides applied.
func (c *Case) Policy(base treediff.Policy) (treediff.Policy, error) {
	p := base.With(c.Override.Options()...)
	if err := p.Validate(); err != nil {
		return treediff.Policy{}, err
	}
	return p, nil
}

// HasTag reports whether the case carries tag.
func (c *Case) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
