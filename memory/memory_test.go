package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/workflow"
)

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateSchema(ctx))

	created, err := s.CreateWorkflow(ctx, &workflow.Document{
		Name:  "flow",
		Tags:  []string{"prod"},
		Nodes: []workflow.Node{{ID: "a"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetWorkflow(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "flow", got.Name)

	missing, err := s.GetWorkflow(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.SetActive(ctx, created.ID, true))
	got.Name = "renamed"
	require.NoError(t, s.UpdateWorkflow(ctx, got))
	got, _ = s.GetWorkflow(ctx, created.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.Active, "update keeps the active flag")

	assert.ErrorIs(t, s.UpdateWorkflow(ctx, &workflow.Document{ID: "nope"}), workflow.ErrWorkflowNotFound)
	assert.ErrorIs(t, s.SetActive(ctx, "nope", true), workflow.ErrWorkflowNotFound)

	require.NoError(t, s.DeleteWorkflow(ctx, created.ID))
	require.NoError(t, s.DeleteWorkflow(ctx, created.ID))
	got, _ = s.GetWorkflow(ctx, created.ID)
	assert.Nil(t, got)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := New()
	var ids []string
	for _, d := range []workflow.Document{
		{Name: "Nightly import", Tags: []string{"prod"}},
		{Name: "adhoc", Tags: []string{"dev"}},
		{Name: "nightly export", Tags: []string{"prod"}},
	} {
		c, err := s.CreateWorkflow(ctx, &d)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	require.NoError(t, s.SetActive(ctx, ids[1], true))

	all, err := s.ListWorkflows(ctx, workflow.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	prod, _ := s.ListWorkflows(ctx, workflow.ListFilter{Tag: "prod"})
	assert.Len(t, prod, 2)

	yes := true
	active, _ := s.ListWorkflows(ctx, workflow.ListFilter{Active: &yes})
	require.Len(t, active, 1)
	assert.Equal(t, ids[1], active[0].ID)

	nightly, _ := s.ListWorkflows(ctx, workflow.ListFilter{Search: "NIGHTLY", Offset: 1, Limit: 5})
	require.Len(t, nightly, 1)
	assert.Equal(t, ids[2], nightly[0].ID)
}

func TestStore_Executions(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, err := s.CreateWorkflow(ctx, &workflow.Document{Name: "x"})
	require.NoError(t, err)

	e := &workflow.Execution{WorkflowID: c.ID, Status: workflow.ExecutionQueued}
	require.NoError(t, s.CreateExecution(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.Len(t, s.Executions(c.ID), 1)

	assert.ErrorIs(t, s.CreateExecution(ctx, &workflow.Execution{WorkflowID: "nope"}), workflow.ErrWorkflowNotFound)
}
