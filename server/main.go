package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/api"
	"github.com/meikuraledutech/workflow/auth"
	"github.com/meikuraledutech/workflow/config"
	"github.com/meikuraledutech/workflow/memory"
	"github.com/meikuraledutech/workflow/metrics"
	"github.com/meikuraledutech/workflow/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	inMemory := flag.Bool("memory", false, "keep workflows in memory instead of PostgreSQL")
	issueFor := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *inMemory && cfg.Server.DatabaseURL == "" {
		cfg.Server.DatabaseURL = "memory"
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var issuer *auth.Issuer
	if cfg.Server.JWTSecret != "" {
		issuer, err = auth.NewIssuer(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
		if err != nil {
			logger.Error("create issuer", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("WORKFLOW_JWT_SECRET is not set, requests are not authenticated")
	}

	if *issueFor != "" {
		if issuer == nil {
			logger.Error("cannot issue a token without a jwt secret")
			os.Exit(1)
		}
		tok, err := issuer.Issue(*issueFor)
		if err != nil {
			logger.Error("issue token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store workflow.Store
	if *inMemory {
		store = memory.New()
	} else {
		pool, err := pgxpool.New(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			logger.Error("connect", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}
	if err := store.CreateSchema(ctx); err != nil {
		logger.Error("create schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := api.New(api.Config{
		Store:   store,
		Issuer:  issuer,
		Metrics: metrics.NewRegistry(),
		Logger:  logger,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown", slog.String("error", err.Error()))
		}
	}()

	logger.Info("starting workflow API", slog.String("listen", cfg.Server.Listen), slog.Bool("memory", *inMemory))
	if err := app.Listen(cfg.Server.Listen); err != nil {
		logger.Error("listen", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
