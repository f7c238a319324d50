// Package graph holds the in-memory node and edge collections of a workflow
// being edited. A Model is driven from a single event-dispatch goroutine and
// performs no locking.
package graph

import (
	"errors"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

var (
	ErrNodeNotFound  = errors.New("graph: node not found")
	ErrSelfLoop      = errors.New("graph: self-loops are not allowed")
	ErrDuplicateEdge = errors.New("graph: duplicate edge id")
)

// Node is a vertex of the graph. Title, Subtitle and Icon are copied from
// the template at creation; there is no link back to the template.
type Node struct {
	ID         string
	Type       string
	Position   workflow.Position
	Title      string
	Subtitle   string
	Icon       string
	Parameters map[string]any
	Disabled   bool
	Notes      string

	// Rendering state, carried through to the document verbatim when set.
	Style       map[string]any
	ClassName   string
	Draggable   *bool
	Selectable  *bool
	Connectable *bool
	Deletable   *bool
	Width       *float64
	Height      *float64
	ParentNode  string
	ZIndex      *int

	Selected bool
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
	Label        string
	Type         string
	Style        map[string]any
	Data         map[string]any
	Animated     bool

	Selected bool
}

// Option configures a Model.
type Option func(*Model)

// WithSelfLoops controls whether Connect accepts source == target.
// Self-loops are allowed by default.
func WithSelfLoops(allow bool) Option {
	return func(m *Model) { m.allowSelfLoops = allow }
}

// Model is the mutable graph. Nodes and edges keep insertion order.
type Model struct {
	nodes     []Node
	nodeIndex map[string]int
	retired   map[string]struct{}

	edges     []Edge
	edgeIndex map[string]int

	allowSelfLoops bool
}

// New creates an empty Model.
func New(opts ...Option) *Model {
	m := &Model{
		nodeIndex:      make(map[string]int),
		retired:        make(map[string]struct{}),
		edgeIndex:      make(map[string]int),
		allowSelfLoops: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddNode appends n to the graph. Node ids are unique for the lifetime of
// the model, including ids of nodes already deleted; a repeated id is a
// programming error and panics.
func (m *Model) AddNode(n Node) {
	if n.ID == "" {
		panic("graph: node id must not be empty")
	}
	if _, ok := m.nodeIndex[n.ID]; ok {
		panic(fmt.Sprintf("graph: duplicate node id %q", n.ID))
	}
	if _, ok := m.retired[n.ID]; ok {
		panic(fmt.Sprintf("graph: node id %q was already used by a deleted node", n.ID))
	}
	if n.Parameters == nil {
		n.Parameters = map[string]any{}
	}
	m.nodeIndex[n.ID] = len(m.nodes)
	m.nodes = append(m.nodes, n)
}

// Node returns the node with the given id.
func (m *Model) Node(id string) (Node, bool) {
	i, ok := m.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return m.nodes[i].clone(), true
}

// HasNode reports whether id names a live node.
func (m *Model) HasNode(id string) bool {
	_, ok := m.nodeIndex[id]
	return ok
}

// Used reports whether id belongs to a live or deleted node.
func (m *Model) Used(id string) bool {
	_, live := m.nodeIndex[id]
	_, gone := m.retired[id]
	return live || gone
}

// Nodes returns a copy of the node collection in insertion order.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = n.clone()
	}
	return out
}

// MoveNode sets the position of a node. A missing id is ignored and false
// is returned; move events may arrive after the node was deleted.
func (m *Model) MoveNode(id string, pos workflow.Position) bool {
	i, ok := m.nodeIndex[id]
	if !ok {
		return false
	}
	m.nodes[i].Position = pos
	return true
}

// UpdateNode applies fn to the node with the given id. The id cannot be
// changed through fn. A missing id is ignored and false is returned.
func (m *Model) UpdateNode(id string, fn func(n *Node)) bool {
	i, ok := m.nodeIndex[id]
	if !ok {
		return false
	}
	fn(&m.nodes[i])
	m.nodes[i].ID = id
	if m.nodes[i].Parameters == nil {
		m.nodes[i].Parameters = map[string]any{}
	}
	return true
}

// SelectNode sets the transient selection flag of a node.
func (m *Model) SelectNode(id string, selected bool) bool {
	return m.UpdateNode(id, func(n *Node) { n.Selected = selected })
}

// SelectedNodeIDs returns the ids of selected nodes in insertion order.
func (m *Model) SelectedNodeIDs() []string {
	var ids []string
	for _, n := range m.nodes {
		if n.Selected {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// NodeCount returns the number of live nodes.
func (m *Model) NodeCount() int { return len(m.nodes) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// DeleteSelection removes the named nodes, every edge touching one of them,
// and the named edges. Ids that are not present are ignored, so repeated
// calls are harmless. It returns the number of nodes and edges removed.
func (m *Model) DeleteSelection(nodeIDs, edgeIDs []string) (nodesRemoved, edgesRemoved int) {
	doomed := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := m.nodeIndex[id]; ok {
			doomed[id] = struct{}{}
		}
	}
	doomedEdges := make(map[string]struct{}, len(edgeIDs))
	for _, id := range edgeIDs {
		doomedEdges[id] = struct{}{}
	}

	if len(doomed) > 0 {
		kept := m.nodes[:0]
		for _, n := range m.nodes {
			if _, ok := doomed[n.ID]; ok {
				m.retired[n.ID] = struct{}{}
				nodesRemoved++
				continue
			}
			kept = append(kept, n)
		}
		clear(m.nodes[len(kept):])
		m.nodes = kept
		m.reindexNodes()
	}

	kept := m.edges[:0]
	for _, e := range m.edges {
		_, srcGone := doomed[e.Source]
		_, tgtGone := doomed[e.Target]
		_, named := doomedEdges[e.ID]
		if srcGone || tgtGone || named {
			edgesRemoved++
			continue
		}
		kept = append(kept, e)
	}
	clear(m.edges[len(kept):])
	m.edges = kept
	if edgesRemoved > 0 {
		m.reindexEdges()
	}
	return nodesRemoved, edgesRemoved
}

func (m *Model) reindexNodes() {
	clear(m.nodeIndex)
	for i, n := range m.nodes {
		m.nodeIndex[n.ID] = i
	}
}

func (m *Model) reindexEdges() {
	clear(m.edgeIndex)
	for i, e := range m.edges {
		m.edgeIndex[e.ID] = i
	}
}
