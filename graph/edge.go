package graph

import (
	"fmt"
	"strconv"
)

// DefaultEdgeType is the edge type assigned to user connections.
const DefaultEdgeType = "smoothstep"

// Connection is a connect gesture reported by the rendering surface.
type Connection struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// EdgeID returns the base edge id for a source/target pair.
func EdgeID(source, target string) string {
	return "e" + source + "-" + target
}

// Connect adds an edge for c. Both endpoints must exist. Parallel
// connections between the same pair coexist: the first takes the base id
// and later ones get the first free suffix "-2", "-3", ...
func (m *Model) Connect(c Connection) (Edge, error) {
	if !m.HasNode(c.Source) {
		return Edge{}, fmt.Errorf("%w: source %q", ErrNodeNotFound, c.Source)
	}
	if !m.HasNode(c.Target) {
		return Edge{}, fmt.Errorf("%w: target %q", ErrNodeNotFound, c.Target)
	}
	if c.Source == c.Target && !m.allowSelfLoops {
		return Edge{}, ErrSelfLoop
	}

	e := Edge{
		ID:           m.freeEdgeID(EdgeID(c.Source, c.Target)),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
		Type:         DefaultEdgeType,
	}
	m.edgeIndex[e.ID] = len(m.edges)
	m.edges = append(m.edges, e)
	return e, nil
}

func (m *Model) freeEdgeID(base string) string {
	if _, taken := m.edgeIndex[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if _, taken := m.edgeIndex[id]; !taken {
			return id
		}
	}
}

// AddEdge inserts a fully formed edge, as when loading a stored document.
// The id must be unused and both endpoints must exist.
func (m *Model) AddEdge(e Edge) error {
	if _, taken := m.edgeIndex[e.ID]; taken || e.ID == "" {
		return fmt.Errorf("%w: %q", ErrDuplicateEdge, e.ID)
	}
	if !m.HasNode(e.Source) {
		return fmt.Errorf("%w: source %q of edge %q", ErrNodeNotFound, e.Source, e.ID)
	}
	if !m.HasNode(e.Target) {
		return fmt.Errorf("%w: target %q of edge %q", ErrNodeNotFound, e.Target, e.ID)
	}
	if e.Source == e.Target && !m.allowSelfLoops {
		return ErrSelfLoop
	}
	m.edgeIndex[e.ID] = len(m.edges)
	m.edges = append(m.edges, e)
	return nil
}

// Edge returns the edge with the given id.
func (m *Model) Edge(id string) (Edge, bool) {
	i, ok := m.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return m.edges[i].clone(), true
}

// Edges returns a copy of the edge collection in insertion order.
func (m *Model) Edges() []Edge {
	out := make([]Edge, len(m.edges))
	for i, e := range m.edges {
		out[i] = e.clone()
	}
	return out
}

// SelectEdge sets the transient selection flag of an edge.
func (m *Model) SelectEdge(id string, selected bool) bool {
	i, ok := m.edgeIndex[id]
	if !ok {
		return false
	}
	m.edges[i].Selected = selected
	return true
}

// SelectedEdgeIDs returns the ids of selected edges in insertion order.
func (m *Model) SelectedEdgeIDs() []string {
	var ids []string
	for _, e := range m.edges {
		if e.Selected {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
