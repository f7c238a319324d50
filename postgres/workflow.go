package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/meikuraledutech/workflow"
)

// CreateWorkflow saves a full workflow (metadata, nodes, edges) in one
// transaction under a new UUID. Returns the workflow with its ID filled in.
func (s *PGStore) CreateWorkflow(ctx context.Context, d *workflow.Document) (*workflow.Document, error) {
	out := *d
	out.ID = uuid.NewString()
	out.Active = false
	if out.Tags == nil {
		out.Tags = []string{}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO workflows (id, name, description, tags) VALUES ($1, $2, $3, $4)`,
		out.ID, out.Name, out.Description, out.Tags,
	); err != nil {
		return nil, fmt.Errorf("workflow: insert workflow: %w", err)
	}
	if err := insertNodes(ctx, tx, out.ID, out.Nodes); err != nil {
		return nil, err
	}
	if err := insertEdges(ctx, tx, out.ID, out.Edges); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("workflow: commit: %w", err)
	}
	return &out, nil
}

// GetWorkflow retrieves a full workflow by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetWorkflow(ctx context.Context, id string) (*workflow.Document, error) {
	d := &workflow.Document{ID: id}
	err := s.db.QueryRow(ctx,
		`SELECT name, description, tags, active FROM workflows WHERE id = $1`, id,
	).Scan(&d.Name, &d.Description, &d.Tags, &d.Active)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("workflow: get workflow: %w", err)
	}

	if d.Nodes, err = listNodes(ctx, s.db, id); err != nil {
		return nil, err
	}
	if d.Edges, err = listEdges(ctx, s.db, id); err != nil {
		return nil, err
	}
	return d, nil
}

const listSQL = `
SELECT w.id, w.name, w.description, w.tags, w.active, w.created_at, w.updated_at,
       (SELECT count(*) FROM workflow_nodes n WHERE n.workflow_id = w.id),
       (SELECT count(*) FROM workflow_edges e WHERE e.workflow_id = w.id)
FROM workflows w
WHERE ($1::boolean IS NULL OR w.active = $1)
  AND ($2::text = '' OR $2 = ANY(w.tags))
  AND ($3::text = '' OR w.name ILIKE '%' || $3 || '%')
ORDER BY w.created_at, w.id
LIMIT $4 OFFSET $5`

// ListWorkflows returns workflow summaries, oldest first.
// Returns an empty slice (not nil) if none match.
func (s *PGStore) ListWorkflows(ctx context.Context, f workflow.ListFilter) ([]workflow.Summary, error) {
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := s.db.Query(ctx, listSQL, f.Active, f.Tag, f.Search, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("workflow: list workflows: %w", err)
	}
	defer rows.Close()

	out := []workflow.Summary{}
	for rows.Next() {
		var sum workflow.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Description, &sum.Tags, &sum.Active,
			&sum.CreatedAt, &sum.UpdatedAt, &sum.NodeCount, &sum.EdgeCount); err != nil {
			return nil, fmt.Errorf("workflow: scan workflow: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows workflows: %w", err)
	}
	return out, nil
}

// UpdateWorkflow replaces the metadata, nodes and edges of d.ID in one
// transaction. The active flag is left as is.
// Returns ErrWorkflowNotFound if the workflow doesn't exist.
func (s *PGStore) UpdateWorkflow(ctx context.Context, d *workflow.Document) error {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE workflows SET name = $1, description = $2, tags = $3, updated_at = NOW() WHERE id = $4`,
		d.Name, d.Description, tags, d.ID,
	)
	if err != nil {
		return fmt.Errorf("workflow: update workflow: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}

	// Replace semantics: edges go with their nodes via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM workflow_nodes WHERE workflow_id = $1`, d.ID); err != nil {
		return fmt.Errorf("workflow: delete nodes: %w", err)
	}
	if err := insertNodes(ctx, tx, d.ID, d.Nodes); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, d.ID, d.Edges); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteWorkflow removes a workflow with its nodes, edges and executions.
// No error if the workflow doesn't exist.
func (s *PGStore) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("workflow: delete workflow: %w", err)
	}
	return nil
}

// SetActive toggles the active flag.
// Returns ErrWorkflowNotFound if the workflow doesn't exist.
func (s *PGStore) SetActive(ctx context.Context, id string, active bool) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE workflows SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("workflow: set active: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

// CreateExecution records an execution request, assigning a UUID when
// e.ID is empty. Returns ErrWorkflowNotFound if the workflow doesn't exist.
func (s *PGStore) CreateExecution(ctx context.Context, e *workflow.Execution) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	input := e.Input
	if input == nil {
		input = map[string]any{}
	}
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("workflow: encode input: %w", err)
	}

	ct, err := s.db.Exec(ctx,
		`INSERT INTO workflow_executions (id, workflow_id, status, input, started_at)
		 SELECT $1, id, $3, $4, $5 FROM workflows WHERE id = $2`,
		e.ID, e.WorkflowID, e.Status, data, e.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("workflow: insert execution: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}
