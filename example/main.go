package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/auth"
	"github.com/meikuraledutech/workflow/catalog"
	"github.com/meikuraledutech/workflow/codec"
	"github.com/meikuraledutech/workflow/config"
	"github.com/meikuraledutech/workflow/dragdrop"
	"github.com/meikuraledutech/workflow/editor"
	"github.com/meikuraledutech/workflow/gateway"
	"github.com/meikuraledutech/workflow/graph"
	"github.com/meikuraledutech/workflow/metadata"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(os.Getenv("WORKFLOW_CONFIG"))
	if err != nil {
		fatal(logger, "load config", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		fatal(logger, "invalid config", err)
	}

	gw, err := gateway.New(gateway.Config{
		BaseURL:     cfg.Client.BaseURL,
		Credentials: auth.NewTokenStore(cfg.Client.Token),
		Timeout:     cfg.Client.Timeout,
		Logger:      logger,
	})
	if err != nil {
		fatal(logger, "create gateway", err)
	}

	s := editor.New(gw, editor.WithLogger(logger))
	s.Name = "onboarding"
	s.Panel.SetDescription("sends a welcome mail for every new signup")
	s.Panel.AddTag("example")

	// ── Drag templates onto the canvas ────────────────────────────────
	byID := map[string]catalog.Template{}
	for _, t := range catalog.List() {
		byID[t.ID] = t
	}
	hook, _ := s.Drop(dragdrop.BeginDrag(byID["webhook"]), workflow.Position{X: 0, Y: 0})
	check, _ := s.Drop(dragdrop.BeginDrag(byID["if"]), workflow.Position{X: 220, Y: 0})
	mail, _ := s.Drop(dragdrop.BeginDrag(byID["email"]), workflow.Position{X: 440, Y: -80})
	notify, _ := s.Drop(dragdrop.BeginDrag(byID["notification"]), workflow.Position{X: 440, Y: 80})

	for _, c := range []graph.Connection{
		{Source: hook.ID, Target: check.ID},
		{Source: check.ID, Target: mail.ID, SourceHandle: "true"},
		{Source: check.ID, Target: notify.ID, SourceHandle: "false"},
	} {
		if _, err := s.Connect(c); err != nil {
			fatal(logger, "connect", err)
		}
	}
	s.Model.UpdateNode(mail.ID, func(n *graph.Node) {
		n.Parameters["to"] = "{{ $json.email }}"
	})

	stats := metadata.StatsOf(s.Model)
	fmt.Printf("%d nodes, %d edges\n", stats.Nodes, stats.Edges)
	for _, tc := range stats.Types {
		fmt.Printf("  %-12s %d\n", tc.Key, tc.Count)
	}

	out, err := codec.EncodeYAML(s.Snapshot())
	if err != nil {
		fatal(logger, "encode", err)
	}
	fmt.Println(string(out))

	// ── Save, activate, execute ───────────────────────────────────────
	res := s.Save(ctx)
	fmt.Println(res.Message)
	if res.Err != nil {
		if gateway.IsUnauthorized(res.Err) {
			fmt.Println("set WORKFLOW_TOKEN to a token issued by the server")
		}
		os.Exit(1)
	}

	if err := gw.Activate(ctx, s.WorkflowID()); err != nil {
		fatal(logger, "activate", err)
	}
	ex, err := gw.Execute(ctx, s.WorkflowID(), map[string]any{"email": "new@example.com"})
	if err != nil {
		fatal(logger, "execute", err)
	}
	fmt.Printf("execution %s %s\n", ex.ID, ex.Status)

	// ── Delete a node and save again ──────────────────────────────────
	s.Model.SelectNode(notify.ID, true)
	s.KeyDown("Delete")
	fmt.Println(s.Save(ctx).Message)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
