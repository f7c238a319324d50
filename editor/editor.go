// Package editor is the editing session behind the workflow canvas. The
// rendering surface reports gestures to a Session from one event-dispatch
// goroutine; saves and loads go through a Gateway.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/codec"
	"github.com/meikuraledutech/workflow/dragdrop"
	"github.com/meikuraledutech/workflow/gateway"
	"github.com/meikuraledutech/workflow/graph"
	"github.com/meikuraledutech/workflow/metadata"
)

// DefaultName is the name of a workflow that has not been renamed.
const DefaultName = "새 워크플로우"

// ErrEmptyWorkflow is returned when saving a graph without nodes.
var ErrEmptyWorkflow = errors.New("editor: workflow has no nodes")

// Gateway is the subset of the persistence client the editor uses.
type Gateway interface {
	Create(ctx context.Context, doc workflow.Document) (string, error)
	Update(ctx context.Context, id string, doc workflow.Document) error
	Get(ctx context.Context, id string) (workflow.Document, error)
}

// Session holds one workflow being edited.
type Session struct {
	Name  string
	Model *graph.Model
	Panel *metadata.Panel

	id      string
	gw      Gateway
	dropper *dragdrop.Dropper
	opts    []graph.Option
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithWorkflowID starts the session on an already stored workflow, so
// saves update it instead of creating a new one.
func WithWorkflowID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithDropper sets the dropper used for new nodes.
func WithDropper(d *dragdrop.Dropper) Option {
	return func(s *Session) { s.dropper = d }
}

// WithGraphOptions configures models created by the session.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(s *Session) { s.opts = opts }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an empty session saving through gw.
func New(gw Gateway, opts ...Option) *Session {
	s := &Session{
		Name:   DefaultName,
		Panel:  metadata.New("", nil),
		gw:     gw,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dropper == nil {
		s.dropper = dragdrop.NewDropper(nil)
	}
	s.Model = graph.New(s.opts...)
	return s
}

// WorkflowID returns the server-assigned id, or "" before the first create.
func (s *Session) WorkflowID() string { return s.id }

// Drop adds the node carried by p at pos. Malformed payloads add nothing.
func (s *Session) Drop(p dragdrop.Payload, pos workflow.Position) (graph.Node, bool) {
	n, ok := s.dropper.CompleteDrop(p, pos)
	if !ok {
		s.logger.Debug("ignored drop", slog.String("media_type", p.MediaType))
		return graph.Node{}, false
	}
	// Ids of a loaded document may come from another clock.
	for s.Model.Used(n.ID) {
		n.ID = s.dropper.NextID()
	}
	s.Model.AddNode(n)
	return n, true
}

// Connect adds an edge for a connect gesture.
func (s *Session) Connect(c graph.Connection) (graph.Edge, error) {
	return s.Model.Connect(c)
}

// KeyDown handles keyboard shortcuts. Delete and Backspace remove the
// current selection; with nothing selected they do nothing.
func (s *Session) KeyDown(key string) {
	if key != "Delete" && key != "Backspace" {
		return
	}
	nodes, edges := s.Model.SelectedNodeIDs(), s.Model.SelectedEdgeIDs()
	if len(nodes) == 0 && len(edges) == 0 {
		return
	}
	s.Model.DeleteSelection(nodes, edges)
}

// Snapshot projects the current graph and metadata into a document.
func (s *Session) Snapshot() workflow.Document {
	return codec.ToDocument(s.Model, codec.Meta{
		Name:        s.Name,
		Description: s.Panel.Description(),
		Tags:        s.Panel.Tags(),
	})
}

// SaveResult is the outcome of one save.
type SaveResult struct {
	ID      string
	Created bool
	Message string
	Err     error
}

// Save snapshots the session and submits it, creating the workflow when no
// id is held yet and updating it otherwise. The graph is never modified by
// a save, so a failed save can simply be retried.
func (s *Session) Save(ctx context.Context) SaveResult {
	res := <-s.SaveAsync(ctx)
	s.Apply(res)
	return res
}

// SaveAsync takes the snapshot now and submits it in the background.
// Editing may continue meanwhile; the caller passes the result to Apply on
// the event-dispatch goroutine. Overlapping saves are not ordered.
func (s *Session) SaveAsync(ctx context.Context) <-chan SaveResult {
	out := make(chan SaveResult, 1)
	if s.Model.NodeCount() == 0 {
		out <- SaveResult{Err: ErrEmptyWorkflow, Message: failureMessage(ErrEmptyWorkflow)}
		return out
	}
	doc, id := s.Snapshot(), s.id
	go func() {
		out <- s.submit(ctx, id, doc)
	}()
	return out
}

func (s *Session) submit(ctx context.Context, id string, doc workflow.Document) SaveResult {
	if id != "" {
		if err := s.gw.Update(ctx, id, doc); err != nil {
			s.logger.Error("failed to save workflow", slog.String("id", id), slog.String("error", err.Error()))
			return SaveResult{ID: id, Err: err, Message: failureMessage(err)}
		}
		return SaveResult{ID: id, Message: "workflow updated"}
	}
	newID, err := s.gw.Create(ctx, doc)
	if err != nil {
		s.logger.Error("failed to save workflow", slog.String("error", err.Error()))
		return SaveResult{Err: err, Message: failureMessage(err)}
	}
	return SaveResult{ID: newID, Created: true, Message: fmt.Sprintf("workflow created (ID: %s)", newID)}
}

// Apply records the id assigned by a successful create.
func (s *Session) Apply(res SaveResult) {
	if res.Err == nil && res.Created && s.id == "" {
		s.id = res.ID
	}
}

func failureMessage(err error) string {
	var gerr *gateway.GatewayError
	if errors.As(err, &gerr) {
		return "save failed: " + gerr.Message
	}
	return "save failed: " + err.Error()
}

// Load replaces the session contents with the stored workflow id.
// On error the session is left untouched.
func (s *Session) Load(ctx context.Context, id string) error {
	doc, err := s.gw.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("editor: load %s: %w", id, err)
	}
	m, meta, err := codec.FromDocument(doc, s.opts...)
	if err != nil {
		return fmt.Errorf("editor: load %s: %w", id, err)
	}
	s.id = id
	s.Model = m
	s.Name = meta.Name
	s.Panel = metadata.New(meta.Description, meta.Tags)
	return nil
}
