// Package memory implements workflow.Store in process memory.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meikuraledutech/workflow"
)

type record struct {
	doc       workflow.Document
	createdAt time.Time
	updatedAt time.Time
}

// Store keeps workflows in a map. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	workflows  map[string]*record
	order      []string
	executions []workflow.Execution
	now        func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{workflows: make(map[string]*record), now: time.Now}
}

func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema discards every workflow and execution.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows = make(map[string]*record)
	s.order = nil
	s.executions = nil
	return nil
}

// CreateWorkflow stores d under a new id and returns the stored copy.
func (s *Store) CreateWorkflow(ctx context.Context, d *workflow.Document) (*workflow.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := clone(*d)
	doc.ID = uuid.NewString()
	doc.Active = false
	now := s.now()
	s.workflows[doc.ID] = &record{doc: doc, createdAt: now, updatedAt: now}
	s.order = append(s.order, doc.ID)

	out := clone(doc)
	return &out, nil
}

// GetWorkflow returns nil, nil if id is unknown.
func (s *Store) GetWorkflow(ctx context.Context, id string) (*workflow.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.workflows[id]
	if !ok {
		return nil, nil
	}
	out := clone(r.doc)
	return &out, nil
}

// ListWorkflows returns summaries in creation order.
func (s *Store) ListWorkflows(ctx context.Context, f workflow.ListFilter) ([]workflow.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []workflow.Summary{}
	skipped := 0
	for _, id := range s.order {
		r := s.workflows[id]
		if !matches(r.doc, f) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		out = append(out, workflow.Summary{
			ID:          r.doc.ID,
			Name:        r.doc.Name,
			Description: r.doc.Description,
			Tags:        slices.Clone(r.doc.Tags),
			Active:      r.doc.Active,
			NodeCount:   len(r.doc.Nodes),
			EdgeCount:   len(r.doc.Edges),
			CreatedAt:   r.createdAt,
			UpdatedAt:   r.updatedAt,
		})
	}
	return out, nil
}

func matches(d workflow.Document, f workflow.ListFilter) bool {
	if f.Active != nil && d.Active != *f.Active {
		return false
	}
	if f.Tag != "" && !slices.Contains(d.Tags, f.Tag) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// UpdateWorkflow replaces the graph and metadata of d.ID, keeping its
// active flag. Returns ErrWorkflowNotFound if it doesn't exist.
func (s *Store) UpdateWorkflow(ctx context.Context, d *workflow.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.workflows[d.ID]
	if !ok {
		return workflow.ErrWorkflowNotFound
	}
	doc := clone(*d)
	doc.Active = r.doc.Active
	r.doc = doc
	r.updatedAt = s.now()
	return nil
}

// DeleteWorkflow removes id. No error if it doesn't exist.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return nil
	}
	delete(s.workflows, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// SetActive toggles the active flag.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.workflows[id]
	if !ok {
		return workflow.ErrWorkflowNotFound
	}
	r.doc.Active = active
	r.updatedAt = s.now()
	return nil
}

// CreateExecution records e, assigning an id when empty.
func (s *Store) CreateExecution(ctx context.Context, e *workflow.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[e.WorkflowID]; !ok {
		return workflow.ErrWorkflowNotFound
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.executions = append(s.executions, *e)
	return nil
}

// Executions returns recorded executions of workflowID.
func (s *Store) Executions(workflowID string) []workflow.Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []workflow.Execution
	for _, e := range s.executions {
		if e.WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out
}

// clone copies the slices of d so callers cannot reach stored state.
// Node and edge maps are shared; documents are replaced, never patched.
func clone(d workflow.Document) workflow.Document {
	d.Tags = slices.Clone(d.Tags)
	d.Nodes = slices.Clone(d.Nodes)
	d.Edges = slices.Clone(d.Edges)
	return d
}
