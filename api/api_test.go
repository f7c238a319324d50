package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/workflow/auth"
	"github.com/meikuraledutech/workflow/memory"
	"github.com/meikuraledutech/workflow/metrics"
)

const validDoc = `{
	"name": "flow",
	"description": "d",
	"tags": ["prod"],
	"nodes": [
		{"id": "a", "type": "turbo", "position": {"x": 0, "y": 0}, "data": {"title": "A", "subtitle": "s", "icon": "Play", "parameters": {}}},
		{"id": "b", "type": "turbo", "position": {"x": 1, "y": 1}, "data": {"title": "B", "subtitle": "s", "icon": "Mail", "parameters": {}}}
	],
	"edges": [{"id": "ea-b", "source": "a", "target": "b", "type": "smoothstep"}]
}`

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(Config{Store: store, Metrics: metrics.NewRegistry()}), store
}

func call(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func createFlow(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/v2/workflows", validDoc)
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestCreateAndGet(t *testing.T) {
	app, _ := newApp(t)
	id := createFlow(t, app)

	status, env := call(t, app, http.MethodGet, "/v2/workflows/"+id, "")
	require.Equal(t, http.StatusOK, status)
	var doc struct {
		Name  string
		Nodes []json.RawMessage
		Edges []json.RawMessage
	}
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, "flow", doc.Name)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Edges, 1)

	status, env = call(t, app, http.MethodGet, "/v2/workflows/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "workflow not found", env.Message)
}

func TestCreate_RejectsInvalidDocuments(t *testing.T) {
	app, _ := newApp(t)
	cases := map[string]string{
		"not json":      `{`,
		"missing name":  `{"nodes": [], "edges": []}`,
		"node no id":    `{"name": "x", "nodes": [{"data": {}}], "edges": []}`,
		"dangling edge": `{"name": "x", "nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "zz"}]}`,
		"dup node":      `{"name": "x", "nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, env := call(t, app, http.MethodPost, "/v2/workflows", body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestUpdateDeleteActivate(t *testing.T) {
	app, store := newApp(t)
	id := createFlow(t, app)

	renamed := strings.Replace(validDoc, `"flow"`, `"renamed"`, 1)
	status, _ := call(t, app, http.MethodPut, "/v2/workflows/"+id, renamed)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodPut, "/v2/workflows/missing", renamed)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/v2/workflows/"+id+"/activate", "")
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, app, http.MethodGet, "/v2/workflows?active=true", "")
	require.Equal(t, http.StatusOK, status)
	var list []struct {
		ID     string
		Name   string
		Active bool
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Name)
	assert.True(t, list[0].Active)

	status, _ = call(t, app, http.MethodPost, "/v2/workflows/"+id+"/deactivate", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodPost, "/v2/workflows/missing/deactivate", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodDelete, "/v2/workflows/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)
	got, err := store.GetWorkflow(t.Context(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_BadQuery(t *testing.T) {
	app, _ := newApp(t)
	for _, q := range []string{"active=maybe", "limit=-1", "offset=x"} {
		status, _ := call(t, app, http.MethodGet, "/v2/workflows?"+q, "")
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
}

func TestExecute(t *testing.T) {
	app, store := newApp(t)
	id := createFlow(t, app)

	status, env := call(t, app, http.MethodPost, "/v2/workflows/"+id+"/execute", `{"user": "kim"}`)
	require.Equal(t, http.StatusAccepted, status)
	var ex struct {
		ID     string
		Status string
		Input  map[string]any
	}
	require.NoError(t, json.Unmarshal(env.Data, &ex))
	assert.Equal(t, "queued", ex.Status)
	assert.Equal(t, "kim", ex.Input["user"])

	status, _ = call(t, app, http.MethodPost, "/v2/workflows/"+id+"/execute", "")
	assert.Equal(t, http.StatusAccepted, status)
	assert.Len(t, store.Executions(id), 2)

	status, _ = call(t, app, http.MethodPost, "/v2/workflows/missing/execute", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, app, http.MethodPost, "/v2/workflows/"+id+"/execute", `[1]`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuth(t *testing.T) {
	iss, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	app := New(Config{Store: memory.New(), Issuer: iss})

	status, env := call(t, app, http.MethodGet, "/v2/workflows", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "missing bearer token", env.Message)

	status, _ = call(t, app, http.MethodGet, "/v2/workflows", "", "Authorization", "Bearer junk")
	assert.Equal(t, http.StatusUnauthorized, status)

	tok, err := iss.Issue("tester")
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/v2/workflows", "", "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newApp(t)
	createFlow(t, app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `workflow_saves_total{op="create"} 1`)
}
