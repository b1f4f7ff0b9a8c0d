package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"seoforge/features/content"
	"seoforge/internal/adapter/gemini"
	"seoforge/internal/app"
	"seoforge/internal/config"
	"seoforge/internal/logger"

	"github.com/nsqio/go-nsq"
)

func main() {
	// Initialize structured logger
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Gemini Adapters
	ctx := context.Background()
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini embedder", "error", err)
		os.Exit(1)
	}
	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini generator", "error", err)
		os.Exit(1)
	}

	// 3. External Dependencies (Postgres, embedding index, NSQ)
	deps, err := app.Bootstrap(cfg, embedder)
	if err != nil {
		slog.Error("failed to bootstrap dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	// 4. Content Catalog
	catalog, err := content.NewRepository(cfg.StorageDir, cfg.ChunkSize, deps.Index)
	if err != nil {
		slog.Error("failed to open content repository", "error", err)
		os.Exit(1)
	}

	// 5. Application Wiring
	a, err := app.New(cfg, deps.DB, catalog, generator, deps.NSQProducer)
	if err != nil {
		slog.Error("failed to wire application", "error", err)
		os.Exit(1)
	}

	// 6. Worker (Generate Consumer)
	consumer, err := nsq.NewConsumer(config.TopicArticleGenerate, config.ChannelPipeline, nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ consumer", "error", err)
	} else {
		consumer.AddHandler(a.GenerateConsumer)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("NSQ Generate Consumer connected")
		}
	}

	// 7. Serve until interrupted
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(runCtx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
