package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"seoforge/features/article"
	"seoforge/features/content"
	"seoforge/features/links"
	"seoforge/features/stats"
	"seoforge/internal/config"
	"seoforge/internal/middleware"
	"seoforge/internal/worker"
)

// Database is the slice of *sql.DB the composition root is handed. Using an
// interface in the signature keeps the wiring mockable with sqlmock while
// the repositories underneath still receive the concrete connection.
type Database interface {
	Ping() error
}

// TaskPublisher enqueues generation tasks for the pipeline worker.
type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler          http.Handler
	ArticleService   *article.Service
	GenerateConsumer *worker.GenerateConsumer

	port int
}

// New wires every feature against the shared dependencies and returns the
// assembled HTTP handler plus the pipeline consumer. It performs no I/O, so
// tests can construct a full App from fakes.
func New(
	cfg *config.Config,
	db Database,
	catalog *content.Repository,
	generator worker.Generator,
	taskPub TaskPublisher,
) (*App, error) {
	// Repositories need the concrete connection.
	sqlDB, ok := db.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("database must be a *sql.DB, got %T", db)
	}

	// Feature: Articles
	articleRepo := article.NewPostgresRepo(sqlDB)
	articleService := article.NewService(articleRepo, taskPub)
	articleHandler := article.NewHandler(articleService)

	// Feature: Content catalog
	contentHandler := content.NewHandler(catalog)

	// Link subsystem. Keyword overlap matching runs first; embedding
	// similarity is the fallback when no keyword match clears the bar.
	keywordMatcher := links.NewKeywordMatcher(catalog, cfg.KeywordMinScore, cfg.MinKeywordMatch)
	embeddingMatcher := links.NewEmbeddingMatcher(catalog, cfg.EmbedMinSimilarity, cfg.MaxInternalLinks)
	external := links.NewExternalBuilder(links.NewWeightedPolicy(time.Now().UnixNano()))
	allocator := links.NewAllocator(external, cfg.MaxInternalLinks, cfg.MaxExternalLinks)
	enricher := links.NewService(keywordMatcher, embeddingMatcher, allocator)

	// Feature: Stats
	statsHandler := stats.NewHandler(articleRepo, catalog)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /articles", middleware.CorrelationID(enableCORS(articleHandler.Create)))
	mux.Handle("GET /articles", middleware.CorrelationID(enableCORS(articleHandler.List)))
	mux.Handle("GET /articles/{id}", middleware.CorrelationID(enableCORS(articleHandler.Get)))
	mux.Handle("POST /articles/{id}/retry", middleware.CorrelationID(enableCORS(articleHandler.Retry)))

	mux.Handle("POST /posts", middleware.CorrelationID(enableCORS(contentHandler.Ingest)))
	mux.Handle("GET /posts/search", middleware.CorrelationID(enableCORS(contentHandler.Search)))
	mux.Handle("GET /posts/{id}", middleware.CorrelationID(enableCORS(contentHandler.Get)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Worker (Generate Consumer)
	publisher := worker.NewNoopPublisher(cfg.SiteBaseURL)
	generateConsumer := worker.NewGenerateConsumer(generator, articleService, catalog, enricher, publisher)

	return &App{
		Handler:          mux,
		ArticleService:   articleService,
		GenerateConsumer: generateConsumer,
		port:             cfg.ServerPort,
	}, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
