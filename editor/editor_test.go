package editor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/catalog"
	"github.com/meikuraledutech/workflow/dragdrop"
	"github.com/meikuraledutech/workflow/gateway"
	"github.com/meikuraledutech/workflow/graph"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Create(ctx context.Context, doc workflow.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Update(ctx context.Context, id string, doc workflow.Document) error {
	args := m.Called(ctx, id, doc)
	return args.Error(0)
}

func (m *mockGateway) Get(ctx context.Context, id string) (workflow.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(workflow.Document), args.Error(1)
}

func template(id string) catalog.Template {
	for _, t := range catalog.List() {
		if t.ID == id {
			return t
		}
	}
	panic("unknown template " + id)
}

func TestSession_DropConnectDelete(t *testing.T) {
	s := New(&mockGateway{})

	a, ok := s.Drop(dragdrop.BeginDrag(template("http")), workflow.Position{X: 120, Y: 80})
	require.True(t, ok)
	b, ok := s.Drop(dragdrop.BeginDrag(template("email")), workflow.Position{X: 300, Y: 80})
	require.True(t, ok)
	assert.NotEqual(t, a.ID, b.ID)

	_, ok = s.Drop(dragdrop.Payload{MediaType: "text/plain", Data: "hi"}, workflow.Position{})
	assert.False(t, ok)
	assert.Equal(t, 2, s.Model.NodeCount())

	_, err := s.Connect(graph.Connection{Source: a.ID, Target: b.ID})
	require.NoError(t, err)

	s.Model.SelectNode(a.ID, true)
	s.KeyDown("Enter")
	assert.Equal(t, 2, s.Model.NodeCount())

	s.KeyDown("Delete")
	assert.Equal(t, 1, s.Model.NodeCount())
	assert.Zero(t, s.Model.EdgeCount())

	// Repeated key with an empty selection does nothing.
	s.KeyDown("Backspace")
	assert.Equal(t, 1, s.Model.NodeCount())
}

func TestSession_DropAvoidsLoadedIDs(t *testing.T) {
	gw := &mockGateway{}
	clock := func() time.Time { return time.UnixMilli(5) }
	s := New(gw, WithDropper(dragdrop.NewDropper(dragdrop.NewIDGeneratorWithClock(clock))))

	gw.On("Get", mock.Anything, "7").Return(workflow.Document{
		Name:  "loaded",
		Nodes: []workflow.Node{{ID: "node-5"}},
	}, nil)
	require.NoError(t, s.Load(context.Background(), "7"))

	n, ok := s.Drop(dragdrop.BeginDrag(template("wait")), workflow.Position{})
	require.True(t, ok)
	assert.Equal(t, "node-5-1", n.ID)
	assert.Equal(t, 2, s.Model.NodeCount())
}

func TestSession_SaveCreatesThenUpdates(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw)
	s.Panel.AddTag("prod")
	s.Panel.SetDescription("nightly")
	_, ok := s.Drop(dragdrop.BeginDrag(template("trigger")), workflow.Position{})
	require.True(t, ok)

	gw.On("Create", mock.Anything, mock.MatchedBy(func(d workflow.Document) bool {
		return d.Name == DefaultName && d.Description == "nightly" &&
			len(d.Tags) == 1 && d.Tags[0] == "prod" && len(d.Nodes) == 1
	})).Return("42", nil).Once()

	res := s.Save(context.Background())
	require.NoError(t, res.Err)
	assert.True(t, res.Created)
	assert.Equal(t, "workflow created (ID: 42)", res.Message)
	assert.Equal(t, "42", s.WorkflowID())

	gw.On("Update", mock.Anything, "42", mock.Anything).Return(nil).Once()
	res = s.Save(context.Background())
	require.NoError(t, res.Err)
	assert.False(t, res.Created)
	assert.Equal(t, "workflow updated", res.Message)

	gw.AssertExpectations(t)
}

func TestSession_SaveEmptyRefused(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw)

	res := s.Save(context.Background())
	assert.ErrorIs(t, res.Err, ErrEmptyWorkflow)
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSession_SaveFailureKeepsGraph(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw, WithWorkflowID("9"))
	_, ok := s.Drop(dragdrop.BeginDrag(template("if")), workflow.Position{})
	require.True(t, ok)

	gw.On("Update", mock.Anything, "9", mock.Anything).
		Return(&gateway.GatewayError{StatusCode: http.StatusUnauthorized, Message: "token expired"})

	res := s.Save(context.Background())
	assert.True(t, gateway.IsUnauthorized(res.Err))
	assert.Equal(t, "save failed: token expired", res.Message)
	assert.Equal(t, 1, s.Model.NodeCount())
	assert.Equal(t, "9", s.WorkflowID())
}

func TestSession_SaveAsyncSnapshotsAtCall(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw)
	_, ok := s.Drop(dragdrop.BeginDrag(template("http")), workflow.Position{})
	require.True(t, ok)

	release := make(chan struct{})
	gw.On("Create", mock.Anything, mock.MatchedBy(func(d workflow.Document) bool {
		return len(d.Nodes) == 1
	})).Run(func(mock.Arguments) { <-release }).Return("1", nil)

	pending := s.SaveAsync(context.Background())
	_, ok = s.Drop(dragdrop.BeginDrag(template("email")), workflow.Position{})
	require.True(t, ok)
	close(release)

	res := <-pending
	require.NoError(t, res.Err)
	s.Apply(res)
	assert.Equal(t, "1", s.WorkflowID())
	assert.Equal(t, 2, s.Model.NodeCount())
}

func TestSession_SaveAsyncSnapshotIsIndependent(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw)
	n, ok := s.Drop(dragdrop.BeginDrag(template("http")), workflow.Position{})
	require.True(t, ok)
	s.Model.UpdateNode(n.ID, func(n *graph.Node) {
		n.Parameters["headers"] = map[string]any{"a": "before"}
		n.Style = map[string]any{"border": map[string]any{"width": 1.0}}
	})

	release := make(chan struct{})
	sent := make(chan workflow.Document, 1)
	gw.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-release
		sent <- args.Get(1).(workflow.Document)
	}).Return("1", nil)

	pending := s.SaveAsync(context.Background())
	s.Model.UpdateNode(n.ID, func(n *graph.Node) {
		n.Parameters["headers"].(map[string]any)["a"] = "after"
		n.Style["border"].(map[string]any)["width"] = 2.0
	})
	close(release)

	res := <-pending
	require.NoError(t, res.Err)
	doc := <-sent
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, map[string]any{"a": "before"}, doc.Nodes[0].Data.Parameters["headers"])
	assert.Equal(t, map[string]any{"width": 1.0}, doc.Nodes[0].Style["border"])
}

func TestSession_Load(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw)

	gw.On("Get", mock.Anything, "3").Return(workflow.Document{
		Name:        "stored",
		Description: "d",
		Tags:        []string{"x", "x"},
		Nodes:       []workflow.Node{{ID: "a"}, {ID: "b"}},
		Edges:       []workflow.Edge{{ID: "ea-b", Source: "a", Target: "b"}},
	}, nil)
	require.NoError(t, s.Load(context.Background(), "3"))

	assert.Equal(t, "3", s.WorkflowID())
	assert.Equal(t, "stored", s.Name)
	assert.Equal(t, []string{"x"}, s.Panel.Tags())
	assert.Equal(t, 2, s.Model.NodeCount())
	assert.Equal(t, 1, s.Model.EdgeCount())
}

func TestSession_LoadErrorsLeaveSessionUntouched(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw)
	_, ok := s.Drop(dragdrop.BeginDrag(template("http")), workflow.Position{})
	require.True(t, ok)

	gw.On("Get", mock.Anything, "missing").Return(workflow.Document{}, errors.New("boom"))
	gw.On("Get", mock.Anything, "broken").Return(workflow.Document{
		Nodes: []workflow.Node{{ID: "a"}},
		Edges: []workflow.Edge{{ID: "e", Source: "a", Target: "zzz"}},
	}, nil)

	assert.Error(t, s.Load(context.Background(), "missing"))
	assert.ErrorIs(t, s.Load(context.Background(), "broken"), workflow.ErrInvalidDocument)
	assert.Equal(t, 1, s.Model.NodeCount())
	assert.Empty(t, s.WorkflowID())
}
