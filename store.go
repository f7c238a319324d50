package workflow

import (
	"context"
	"errors"
)

var (
	ErrWorkflowNotFound = errors.New("workflow: workflow not found")
	ErrInvalidDocument  = errors.New("workflow: invalid document")
)

// Store defines the contract for persisting and retrieving workflows.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Workflows
	CreateWorkflow(ctx context.Context, d *Document) (*Document, error)
	GetWorkflow(ctx context.Context, id string) (*Document, error)
	ListWorkflows(ctx context.Context, f ListFilter) ([]Summary, error)
	UpdateWorkflow(ctx context.Context, d *Document) error
	DeleteWorkflow(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error

	// Executions
	CreateExecution(ctx context.Context, e *Execution) error
}
