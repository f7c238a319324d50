package workflow

import "time"

// Document is the persisted form of a workflow graph plus its metadata.
// ID and Active are assigned by the service and omitted from create payloads.
type Document struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name" validate:"required,max=200"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags" validate:"dive,required"`
	Nodes       []Node   `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges       []Edge   `json:"edges" yaml:"edges" validate:"dive"`
	Active      bool     `json:"active,omitempty" yaml:"active,omitempty"`
}

// Position is a point in canvas coordinates.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is the projection of a graph node. Optional rendering fields are
// pointers or omitempty so that absent values stay absent on the wire.
type Node struct {
	ID          string         `json:"id" yaml:"id" validate:"required"`
	Type        string         `json:"type,omitempty" yaml:"type,omitempty"`
	Position    Position       `json:"position" yaml:"position"`
	Data        NodeData       `json:"data" yaml:"data"`
	Style       map[string]any `json:"style,omitempty" yaml:"style,omitempty"`
	ClassName   string         `json:"className,omitempty" yaml:"className,omitempty"`
	Draggable   *bool          `json:"draggable,omitempty" yaml:"draggable,omitempty"`
	Selectable  *bool          `json:"selectable,omitempty" yaml:"selectable,omitempty"`
	Connectable *bool          `json:"connectable,omitempty" yaml:"connectable,omitempty"`
	Deletable   *bool          `json:"deletable,omitempty" yaml:"deletable,omitempty"`
	Width       *float64       `json:"width,omitempty" yaml:"width,omitempty"`
	Height      *float64       `json:"height,omitempty" yaml:"height,omitempty"`
	ParentNode  string         `json:"parentNode,omitempty" yaml:"parentNode,omitempty"`
	ZIndex      *int           `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
}

// NodeData is the uniform payload shared by every node kind.
type NodeData struct {
	Title      string         `json:"title" yaml:"title"`
	Subtitle   string         `json:"subtitle" yaml:"subtitle"`
	Icon       string         `json:"icon" yaml:"icon"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
	Disabled   bool           `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Notes      string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Edge is the projection of a directed connection between two nodes.
type Edge struct {
	ID           string         `json:"id" yaml:"id" validate:"required"`
	Source       string         `json:"source" yaml:"source" validate:"required"`
	Target       string         `json:"target" yaml:"target" validate:"required"`
	Label        string         `json:"label,omitempty" yaml:"label,omitempty"`
	Type         string         `json:"type,omitempty" yaml:"type,omitempty"`
	Style        map[string]any `json:"style,omitempty" yaml:"style,omitempty"`
	SourceHandle string         `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string         `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
	Animated     bool           `json:"animated,omitempty" yaml:"animated,omitempty"`
	Data         map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Summary is a list entry for a stored workflow.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Active      bool      `json:"active"`
	NodeCount   int       `json:"nodeCount"`
	EdgeCount   int       `json:"edgeCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListFilter narrows ListWorkflows. Zero values mean "no constraint".
type ListFilter struct {
	Active *bool
	Tag    string
	Search string
	Limit  int
	Offset int
}

// Execution records a request to run a stored workflow.
// Running it is outside this module; the status stays "queued".
type Execution struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflowId"`
	Status     string         `json:"status"`
	Input      map[string]any `json:"input,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
}

// ExecutionQueued is the status of an execution that has been accepted.
const ExecutionQueued = "queued"
