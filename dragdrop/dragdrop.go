// Package dragdrop turns a template dragged from the palette into a graph
// node dropped on the canvas.
package dragdrop

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/catalog"
	"github.com/meikuraledutech/workflow/graph"
)

// MediaType tags drag payloads carrying a node template.
const MediaType = "application/reactflow"

// NodeType is the node type assigned to dropped nodes.
const NodeType = "turbo"

// Payload is what travels through the drag-data channel.
type Payload struct {
	MediaType string
	Data      string
}

type nodeData struct {
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle"`
	Icon       string         `json:"icon"`
	Parameters map[string]any `json:"parameters"`
}

// BeginDrag encodes t for the drag-data channel.
func BeginDrag(t catalog.Template) Payload {
	b, _ := json.Marshal(nodeData{
		Title:      t.Title,
		Subtitle:   t.Subtitle,
		Icon:       t.Icon,
		Parameters: map[string]any{},
	})
	return Payload{MediaType: MediaType, Data: string(b)}
}

// IDGenerator produces node ids of the form "node-<unix millis>". Ids
// generated within the same millisecond, or after the clock moved backwards,
// get a "-<n>" counter suffix so that no id repeats within a session.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
	seq  int
}

// NewIDGenerator creates a generator reading the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock creates a generator reading now.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// Next returns a fresh node id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		g.seq++
		return fmt.Sprintf("node-%d-%d", g.last, g.seq)
	}
	g.last, g.seq = ms, 0
	return fmt.Sprintf("node-%d", ms)
}

// Dropper completes drops into graph nodes.
type Dropper struct {
	ids *IDGenerator
}

// NewDropper creates a Dropper drawing ids from ids. A nil generator uses
// the wall clock.
func NewDropper(ids *IDGenerator) *Dropper {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Dropper{ids: ids}
}

// NextID draws a fresh id from the dropper's generator.
func (d *Dropper) NextID() string { return d.ids.Next() }

// CompleteDrop decodes p and builds a node at pos, which is already in
// canvas coordinates. Payloads from other drag sources, empty payloads and
// payloads that do not decode to a titled node yield ok == false.
func (d *Dropper) CompleteDrop(p Payload, pos workflow.Position) (n graph.Node, ok bool) {
	if p.MediaType != MediaType || strings.TrimSpace(p.Data) == "" {
		return graph.Node{}, false
	}
	var data nodeData
	if err := json.Unmarshal([]byte(p.Data), &data); err != nil {
		return graph.Node{}, false
	}
	if data.Title == "" {
		return graph.Node{}, false
	}
	if data.Parameters == nil {
		data.Parameters = map[string]any{}
	}

	yes := true
	return graph.Node{
		ID:          d.ids.Next(),
		Type:        NodeType,
		Position:    pos,
		Title:       data.Title,
		Subtitle:    data.Subtitle,
		Icon:        data.Icon,
		Parameters:  data.Parameters,
		Draggable:   &yes,
		Selectable:  &yes,
		Connectable: &yes,
	}, true
}
