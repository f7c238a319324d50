// Package gateway is the HTTP client for the /v2/workflows resource.
// It performs exactly one exchange per call and never retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meikuraledutech/workflow"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "http://localhost:8080"

// Credentials supplies the bearer token for each request. An empty token
// sends the request unauthenticated.
type Credentials interface {
	Token() string
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	Credentials Credentials
	HTTPClient  *http.Client
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Client talks to the workflow service.
type Client struct {
	base   *url.URL
	creds  Credentials
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{base: base, creds: cfg.Credentials, http: hc, logger: logger}, nil
}

// ListParams filters List. Zero values are not sent.
type ListParams struct {
	Active *bool
	Tag    string
	Search string
	Limit  int
	Offset int
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Active != nil {
		v.Set("active", strconv.FormatBool(*p.Active))
	}
	if p.Tag != "" {
		v.Set("tag", p.Tag)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

// Create stores a new workflow and returns its id. A numeric id from the
// service is returned in its decimal text form.
func (c *Client) Create(ctx context.Context, doc workflow.Document) (string, error) {
	var out remoteDocument
	if err := c.do(ctx, http.MethodPost, "/v2/workflows", nil, doc, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &GatewayError{StatusCode: http.StatusCreated, Message: "response carries no workflow id"}
	}
	return string(out.ID), nil
}

// Get reads a stored workflow.
func (c *Client) Get(ctx context.Context, id string) (workflow.Document, error) {
	var out remoteDocument
	if err := c.do(ctx, http.MethodGet, workflowPath(id), nil, nil, &out); err != nil {
		return workflow.Document{}, err
	}
	return out.document(), nil
}

// List returns workflow summaries matching p.
func (c *Client) List(ctx context.Context, p ListParams) ([]workflow.Summary, error) {
	var raw []remoteSummary
	if err := c.do(ctx, http.MethodGet, "/v2/workflows", p.values(), nil, &raw); err != nil {
		return nil, err
	}
	out := make([]workflow.Summary, len(raw))
	for i, r := range raw {
		out[i] = r.Summary
		out[i].ID = string(r.ID)
	}
	return out, nil
}

// Update replaces a stored workflow.
func (c *Client) Update(ctx context.Context, id string, doc workflow.Document) error {
	return c.do(ctx, http.MethodPut, workflowPath(id), nil, doc, nil)
}

// Delete removes a stored workflow.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, workflowPath(id), nil, nil, nil)
}

// Activate marks a workflow active.
func (c *Client) Activate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, workflowPath(id)+"/activate", nil, nil, nil)
}

// Deactivate marks a workflow inactive.
func (c *Client) Deactivate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, workflowPath(id)+"/deactivate", nil, nil, nil)
}

// Execute asks the service to run a workflow with optional input.
func (c *Client) Execute(ctx context.Context, id string, input map[string]any) (workflow.Execution, error) {
	if input == nil {
		input = map[string]any{}
	}
	var out remoteExecution
	if err := c.do(ctx, http.MethodPost, workflowPath(id)+"/execute", nil, input, &out); err != nil {
		return workflow.Execution{}, err
	}
	return out.execution(), nil
}

func workflowPath(id string) string {
	return "/v2/workflows/" + url.PathEscape(id)
}

// envelope is the response body shape of the service.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.RawPath = c.base.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return &GatewayError{Message: err.Error(), Err: err}
	}
	u.Path = unescaped
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &GatewayError{Message: "encode request: " + err.Error(), Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &GatewayError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("workflow request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &GatewayError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: "read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &GatewayError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("authentication failed",
				slog.String("method", method),
				slog.String("path", path),
			)
		} else {
			c.logger.Error("workflow request rejected",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
				slog.String("message", gerr.Message),
			)
		}
		return gerr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}
	return nil
}

// errorMessage prefers the service's message and falls back to the status text.
func errorMessage(status int, raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return http.StatusText(status)
}

// IsUnauthorized reports whether err carries a 401 from the service.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
