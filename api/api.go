// Package api serves the /v2/workflows resource over HTTP.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/auth"
	"github.com/meikuraledutech/workflow/codec"
	"github.com/meikuraledutech/workflow/metrics"
)

// Config wires the service. Issuer and Metrics are optional: without an
// Issuer requests are not authenticated, without Metrics nothing is recorded.
type Config struct {
	Store   workflow.Store
	Issuer  *auth.Issuer
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

type handler struct {
	store    workflow.Store
	metrics  *metrics.Registry
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New builds the fiber app serving the workflow API.
func New(cfg Config) *fiber.App {
	h := &handler{
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		validate: validator.New(),
		now:      time.Now,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	app := fiber.New()
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Gatherer(), promhttp.HandlerOpts{})))
	}
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ── Workflows ─────────────────────────────────────────────────────
	wf := app.Group("/v2/workflows", requireToken(cfg.Issuer))
	wf.Post("", h.create)
	wf.Get("", h.list)
	wf.Get("/:id", h.get)
	wf.Put("/:id", h.update)
	wf.Delete("/:id", h.remove)
	wf.Post("/:id/activate", h.setActive(true))
	wf.Post("/:id/deactivate", h.setActive(false))
	wf.Post("/:id/execute", h.execute)

	return app
}

// requireToken rejects requests without a valid bearer token. A nil
// issuer lets every request through.
func requireToken(iss *auth.Issuer) fiber.Handler {
	return func(c fiber.Ctx) error {
		if iss == nil {
			return c.Next()
		}
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fail(c, fiber.StatusUnauthorized, "missing bearer token")
		}
		subject, err := iss.Verify(token)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals("subject", subject)
		return c.Next()
	}
}

func reply(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func (h *handler) internal(c fiber.Ctx, op string, err error) error {
	h.logger.Error("workflow store failed",
		slog.String("op", op),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return fail(c, fiber.StatusInternalServerError, "internal error")
}

// decode binds and validates a document body. It checks the struct tags
// and that the graph loads: unique ids and no dangling edges.
func (h *handler) decode(c fiber.Ctx) (*workflow.Document, error) {
	var d workflow.Document
	if err := c.Bind().JSON(&d); err != nil {
		return nil, fmt.Errorf("%w: invalid body", workflow.ErrInvalidDocument)
	}
	if err := h.validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("%w: %s", workflow.ErrInvalidDocument, describe(err))
	}
	if _, _, err := codec.FromDocument(d); err != nil {
		return nil, err
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return &d, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag())
	}
	return err.Error()
}

func (h *handler) create(c fiber.Ctx) error {
	d, err := h.decode(c)
	if err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	d.ID = ""
	created, err := h.store.CreateWorkflow(c.Context(), d)
	if err != nil {
		return h.internal(c, "create", err)
	}
	if h.metrics != nil {
		h.metrics.WorkflowsSaved.WithLabelValues("create").Inc()
	}
	return reply(c, fiber.StatusCreated, created)
}

func (h *handler) list(c fiber.Ctx) error {
	f := workflow.ListFilter{
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	}
	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "active must be true or false")
		}
		f.Active = &active
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fail(c, fiber.StatusBadRequest, name+" must be a non-negative integer")
		}
		*dst = n
	}

	list, err := h.store.ListWorkflows(c.Context(), f)
	if err != nil {
		return h.internal(c, "list", err)
	}
	return reply(c, fiber.StatusOK, list)
}

func (h *handler) get(c fiber.Ctx) error {
	d, err := h.store.GetWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return h.internal(c, "get", err)
	}
	if d == nil {
		return fail(c, fiber.StatusNotFound, "workflow not found")
	}
	return reply(c, fiber.StatusOK, d)
}

func (h *handler) update(c fiber.Ctx) error {
	d, err := h.decode(c)
	if err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	d.ID = c.Params("id")
	err = h.store.UpdateWorkflow(c.Context(), d)
	if errors.Is(err, workflow.ErrWorkflowNotFound) {
		return fail(c, fiber.StatusNotFound, "workflow not found")
	}
	if err != nil {
		return h.internal(c, "update", err)
	}
	if h.metrics != nil {
		h.metrics.WorkflowsSaved.WithLabelValues("update").Inc()
	}
	return reply(c, fiber.StatusOK, fiber.Map{"id": d.ID})
}

func (h *handler) remove(c fiber.Ctx) error {
	if err := h.store.DeleteWorkflow(c.Context(), c.Params("id")); err != nil {
		return h.internal(c, "delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) setActive(active bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Params("id")
		err := h.store.SetActive(c.Context(), id, active)
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			return fail(c, fiber.StatusNotFound, "workflow not found")
		}
		if err != nil {
			return h.internal(c, "set active", err)
		}
		return reply(c, fiber.StatusOK, fiber.Map{"id": id, "active": active})
	}
}

func (h *handler) execute(c fiber.Ctx) error {
	input := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&input); err != nil {
			return fail(c, fiber.StatusBadRequest, "input must be a JSON object")
		}
	}
	e := &workflow.Execution{
		WorkflowID: c.Params("id"),
		Status:     workflow.ExecutionQueued,
		Input:      input,
		StartedAt:  h.now().UTC(),
	}
	err := h.store.CreateExecution(c.Context(), e)
	if errors.Is(err, workflow.ErrWorkflowNotFound) {
		return fail(c, fiber.StatusNotFound, "workflow not found")
	}
	if err != nil {
		return h.internal(c, "execute", err)
	}
	if h.metrics != nil {
		h.metrics.ExecutionsRequested.Inc()
	}
	return reply(c, fiber.StatusAccepted, e)
}
