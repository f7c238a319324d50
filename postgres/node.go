package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// insertNodes stores nodes of a workflow, keeping their order in seq.
func insertNodes(ctx context.Context, q querier, workflowID string, nodes []workflow.Node) error {
	for i, n := range nodes {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("workflow: encode node %s: %w", n.ID, err)
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO workflow_nodes (workflow_id, id, seq, data) VALUES ($1, $2, $3, $4)`,
			workflowID, n.ID, i, data,
		); err != nil {
			return fmt.Errorf("workflow: insert node %s: %w", n.ID, err)
		}
	}
	return nil
}

// listNodes returns all nodes of a workflow in stored order.
// Returns an empty slice (not nil) if none found.
func listNodes(ctx context.Context, q querier, workflowID string) ([]workflow.Node, error) {
	rows, err := q.Query(ctx,
		`SELECT data FROM workflow_nodes WHERE workflow_id = $1 ORDER BY seq`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []workflow.Node{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("workflow: scan node: %w", err)
		}
		var n workflow.Node
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("workflow: decode node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows nodes: %w", err)
	}

	return nodes, nil
}
