package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/workflow"
)

// newTestStore connects to WORKFLOW_TEST_DATABASE_URL and recreates the
// schema, or skips when it is unset.
func newTestStore(t *testing.T) *PGStore {
	t.Helper()
	url := os.Getenv("WORKFLOW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("WORKFLOW_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func TestPGStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	width := 120.0

	created, err := s.CreateWorkflow(ctx, &workflow.Document{
		Name: "flow",
		Tags: []string{"prod"},
		Nodes: []workflow.Node{
			{ID: "a", Type: "turbo", Data: workflow.NodeData{Title: "A", Parameters: map[string]any{}}, Width: &width},
			{ID: "b", Type: "turbo", Data: workflow.NodeData{Title: "B", Parameters: map[string]any{}}},
		},
		Edges: []workflow.Edge{{ID: "ea-b", Source: "a", Target: "b", Type: "smoothstep"}},
	})
	require.NoError(t, err)

	got, err := s.GetWorkflow(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Nodes, got.Nodes)
	assert.Equal(t, created.Edges, got.Edges)
	assert.Equal(t, []string{"prod"}, got.Tags)

	got.Nodes = got.Nodes[:1]
	got.Edges = nil
	require.NoError(t, s.UpdateWorkflow(ctx, got))
	require.NoError(t, s.SetActive(ctx, created.ID, true))

	list, err := s.ListWorkflows(ctx, workflow.ListFilter{Tag: "prod"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].NodeCount)
	assert.Zero(t, list[0].EdgeCount)
	assert.True(t, list[0].Active)

	require.NoError(t, s.CreateExecution(ctx, &workflow.Execution{WorkflowID: created.ID, Status: workflow.ExecutionQueued}))
	assert.ErrorIs(t, s.CreateExecution(ctx, &workflow.Execution{WorkflowID: "nope", Status: workflow.ExecutionQueued}), workflow.ErrWorkflowNotFound)

	require.NoError(t, s.DeleteWorkflow(ctx, created.ID))
	got, err = s.GetWorkflow(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, s.SetActive(ctx, created.ID, false), workflow.ErrWorkflowNotFound)
}
