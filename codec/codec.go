// Package codec converts between the graph model and the persisted
// workflow document.
package codec

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/graph"
)

// Meta is the document metadata carried beside the graph.
type Meta struct {
	Name        string
	Description string
	Tags        []string
}

// ToDocument projects m and the metadata into a document. Fields unset on
// a node or edge stay unset in the projection.
func ToDocument(m *graph.Model, meta Meta) workflow.Document {
	doc := workflow.Document{
		Name:        meta.Name,
		Description: meta.Description,
		Tags:        slices.Clone(meta.Tags),
		Nodes:       []workflow.Node{},
		Edges:       []workflow.Edge{},
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	for _, n := range m.Nodes() {
		doc.Nodes = append(doc.Nodes, nodeToDoc(n))
	}
	for _, e := range m.Edges() {
		doc.Edges = append(doc.Edges, edgeToDoc(e))
	}
	return doc
}

func nodeToDoc(n graph.Node) workflow.Node {
	params := n.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return workflow.Node{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data: workflow.NodeData{
			Title:      n.Title,
			Subtitle:   n.Subtitle,
			Icon:       n.Icon,
			Parameters: params,
			Disabled:   n.Disabled,
			Notes:      n.Notes,
		},
		Style:       n.Style,
		ClassName:   n.ClassName,
		Draggable:   n.Draggable,
		Selectable:  n.Selectable,
		Connectable: n.Connectable,
		Deletable:   n.Deletable,
		Width:       n.Width,
		Height:      n.Height,
		ParentNode:  n.ParentNode,
		ZIndex:      n.ZIndex,
	}
}

func edgeToDoc(e graph.Edge) workflow.Edge {
	return workflow.Edge{
		ID:           e.ID,
		Source:       e.Source,
		Target:       e.Target,
		Label:        e.Label,
		Type:         e.Type,
		Style:        e.Style,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
		Animated:     e.Animated,
		Data:         e.Data,
	}
}

// FromDocument rebuilds a graph from doc. Missing optional fields take
// their zero defaults. A document with duplicate ids or edges pointing at
// unknown nodes is rejected with workflow.ErrInvalidDocument.
func FromDocument(doc workflow.Document, opts ...graph.Option) (m *graph.Model, meta Meta, err error) {
	m = graph.New(opts...)

	seen := make(map[string]struct{}, len(doc.Nodes))
	for _, dn := range doc.Nodes {
		if dn.ID == "" {
			return nil, Meta{}, fmt.Errorf("%w: node without id", workflow.ErrInvalidDocument)
		}
		if _, dup := seen[dn.ID]; dup {
			return nil, Meta{}, fmt.Errorf("%w: duplicate node id %q", workflow.ErrInvalidDocument, dn.ID)
		}
		seen[dn.ID] = struct{}{}
		m.AddNode(nodeFromDoc(dn))
	}
	for _, de := range doc.Edges {
		if err := m.AddEdge(edgeFromDoc(de)); err != nil {
			return nil, Meta{}, fmt.Errorf("%w: %w", workflow.ErrInvalidDocument, err)
		}
	}

	meta = Meta{
		Name:        doc.Name,
		Description: doc.Description,
		Tags:        slices.Clone(doc.Tags),
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	return m, meta, nil
}

func nodeFromDoc(dn workflow.Node) graph.Node {
	params := dn.Data.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return graph.Node{
		ID:          dn.ID,
		Type:        dn.Type,
		Position:    dn.Position,
		Title:       dn.Data.Title,
		Subtitle:    dn.Data.Subtitle,
		Icon:        dn.Data.Icon,
		Parameters:  params,
		Disabled:    dn.Data.Disabled,
		Notes:       dn.Data.Notes,
		Style:       dn.Style,
		ClassName:   dn.ClassName,
		Draggable:   dn.Draggable,
		Selectable:  dn.Selectable,
		Connectable: dn.Connectable,
		Deletable:   dn.Deletable,
		Width:       dn.Width,
		Height:      dn.Height,
		ParentNode:  dn.ParentNode,
		ZIndex:      dn.ZIndex,
	}
}

func edgeFromDoc(de workflow.Edge) graph.Edge {
	return graph.Edge{
		ID:           de.ID,
		Source:       de.Source,
		Target:       de.Target,
		SourceHandle: de.SourceHandle,
		TargetHandle: de.TargetHandle,
		Label:        de.Label,
		Type:         de.Type,
		Style:        de.Style,
		Data:         de.Data,
		Animated:     de.Animated,
	}
}

// EncodeJSON renders doc as indented JSON.
func EncodeJSON(doc workflow.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeJSON parses a JSON document.
func DecodeJSON(b []byte) (workflow.Document, error) {
	var doc workflow.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return workflow.Document{}, fmt.Errorf("%w: %w", workflow.ErrInvalidDocument, err)
	}
	return doc, nil
}

// EncodeYAML renders doc as YAML, for exports meant to be read by people.
func EncodeYAML(doc workflow.Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// DecodeYAML parses a YAML document.
func DecodeYAML(b []byte) (workflow.Document, error) {
	var doc workflow.Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return workflow.Document{}, fmt.Errorf("%w: %w", workflow.ErrInvalidDocument, err)
	}
	return doc, nil
}
