// Package metadata keeps the workflow description and tags and derives
// read-only statistics from the graph.
package metadata

import (
	"slices"
	"strings"

	"github.com/meikuraledutech/workflow/graph"
)

// Panel owns the description and tag list of a workflow.
type Panel struct {
	description string
	tags        []string
}

// New creates a Panel seeded with description and tags. Blank and repeated
// tags are dropped.
func New(description string, tags []string) *Panel {
	p := &Panel{description: description}
	for _, t := range tags {
		p.AddTag(t)
	}
	return p
}

// Description returns the free-text description.
func (p *Panel) Description() string { return p.description }

// SetDescription replaces the description. Any text, including empty, is accepted.
func (p *Panel) SetDescription(s string) { p.description = s }

// Tags returns a copy of the tags in insertion order.
func (p *Panel) Tags() []string {
	out := slices.Clone(p.tags)
	if out == nil {
		out = []string{}
	}
	return out
}

// AddTag appends the trimmed tag. It reports false when the tag is blank
// or already present.
func (p *Panel) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(p.tags, tag) {
		return false
	}
	p.tags = append(p.tags, tag)
	return true
}

// RemoveTag removes the first exact match of tag.
func (p *Panel) RemoveTag(tag string) bool {
	i := slices.Index(p.tags, tag)
	if i < 0 {
		return false
	}
	p.tags = slices.Delete(p.tags, i, i+1)
	return true
}

// Stats is the read-only summary shown beside the canvas.
type Stats struct {
	Nodes int               `json:"nodes"`
	Edges int               `json:"edges"`
	Types []graph.TypeCount `json:"types"`
}

// StatsOf derives Stats from m.
func StatsOf(m *graph.Model) Stats {
	return Stats{
		Nodes: m.NodeCount(),
		Edges: m.EdgeCount(),
		Types: m.TypeHistogram(),
	}
}
