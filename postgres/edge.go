package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// insertEdges stores edges of a workflow. Both endpoints must already be
// inserted; the foreign keys reject dangling edges.
func insertEdges(ctx context.Context, q querier, workflowID string, edges []workflow.Edge) error {
	for i, e := range edges {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("workflow: encode edge %s: %w", e.ID, err)
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO workflow_edges (workflow_id, id, seq, source, target, data) VALUES ($1, $2, $3, $4, $5, $6)`,
			workflowID, e.ID, i, e.Source, e.Target, data,
		); err != nil {
			return fmt.Errorf("workflow: insert edge %s: %w", e.ID, err)
		}
	}
	return nil
}

// listEdges returns all edges of a workflow in stored order.
// Returns an empty slice (not nil) if none found.
func listEdges(ctx context.Context, q querier, workflowID string) ([]workflow.Edge, error) {
	rows, err := q.Query(ctx,
		`SELECT data FROM workflow_edges WHERE workflow_id = $1 ORDER BY seq`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list edges: %w", err)
	}
	defer rows.Close()

	edges := []workflow.Edge{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("workflow: scan edge: %w", err)
		}
		var e workflow.Edge
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("workflow: decode edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows edges: %w", err)
	}

	return edges, nil
}
