// Package main boots the Classroom Pulse dashboard service and wires its dependencies.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/classroom-pulse/internal/config"
	"github.com/easeaico/classroom-pulse/internal/models"
	"github.com/easeaico/classroom-pulse/internal/narrator"
	"github.com/easeaico/classroom-pulse/internal/session"
	"github.com/easeaico/classroom-pulse/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Info("configuration loaded",
		"listen_addr", cfg.ListenAddr,
		"class_size", cfg.ClassSize,
		"narrator_provider", cfg.NarratorProvider,
		"narrator_model", cfg.NarratorModel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessCfg := session.DefaultConfig(cfg.ClassSize)
	sessCfg.CourseTitle = cfg.CourseTitle
	sessCfg.TickMin = cfg.TickMin
	sessCfg.TickMax = cfg.TickMax
	sessCfg.InterventionDelay = cfg.InterventionDelay

	sess, err := session.New(sessCfg, session.WithLogger(logger))
	if err != nil {
		log.Fatalf("failed to start classroom session: %v", err)
	}

	llm, err := newNarratorModel(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create narrator model: %v", err)
	}
	reporter := narrator.NewReporter(llm, cfg.CourseTitle, logger)
	server := web.NewServer(cfg.ListenAddr, sess, reporter, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Fatalf("classroom service stopped: %v", err)
	}
	slog.Info("classroom service stopped")
}

// newNarratorModel returns nil when no provider or key is configured, leaving the local summary.
func newNarratorModel(ctx context.Context, cfg config.Config) (model.LLM, error) {
	key := cfg.NarratorKey()
	if cfg.NarratorProvider == config.ProviderNone {
		return nil, nil
	}
	if key == "" {
		slog.Warn("narrator api key missing, using local summaries", "provider", cfg.NarratorProvider)
		return nil, nil
	}

	clientCfg := &genai.ClientConfig{APIKey: key}
	switch cfg.NarratorProvider {
	case config.ProviderGroq:
		return models.NewGroqModel(ctx, cfg.NarratorModel, clientCfg)
	case config.ProviderOpenAI:
		return models.NewOpenAIModel(ctx, cfg.NarratorModel, clientCfg)
	case config.ProviderGemini:
		return models.NewGeminiModel(ctx, cfg.NarratorModel, key)
	default:
		return nil, nil
	}
}
