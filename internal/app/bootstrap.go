package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"seoforge/features/content"
	"seoforge/internal/config"
	"seoforge/internal/vectorstore"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
)

type Dependencies struct {
	DB          *sql.DB
	Index       *vectorstore.Store
	NSQProducer *nsq.Producer
}

// Bootstrap opens the external dependencies: Postgres (with migrations),
// the on-disk embedding index, and the NSQ producer. Everything it returns
// is ready for app.New.
func Bootstrap(cfg *config.Config, embedder vectorstore.Embedder) (*Dependencies, error) {
	// Database
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	if err := waitForDB(db, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, fmt.Errorf("migration up error: %w", err)
	}
	slog.Info("migrations applied successfully")

	// Embedding index. Missing or corrupt blobs yield a fresh store; the
	// catalog re-ingests rebuild it.
	index := vectorstore.Load(content.IndexPathFor(cfg.StorageDir), embedder)

	// NSQ Producer
	producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("nsq producer error: %w", err)
	}

	createTopics(cfg.NSQDHTTP)

	return &Dependencies{
		DB:          db,
		Index:       index,
		NSQProducer: producer,
	}, nil
}

type pinger interface {
	Ping() error
}

// waitForDB polls until the database answers or the attempts run out.
func waitForDB(db pinger, attempts int, delay time.Duration) error {
	for i := 0; i < attempts; i++ {
		if err := db.Ping(); err == nil {
			return nil
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", attempts)
		time.Sleep(delay)
	}
	return db.Ping()
}

// createTopics pre-creates the generation topic. NSQ creates topics lazily
// on first publish, but a consumer querying lookupd 404s until then.
func createTopics(nsqdHTTP string) {
	go func() {
		time.Sleep(2 * time.Second)
		url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, config.TopicArticleGenerate)
		resp, err := http.Post(url, "application/json", nil)
		if err != nil {
			slog.Warn("failed to create NSQ topic", "topic", config.TopicArticleGenerate, "error", err)
			return
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close NSQ topic creation response body", "error", closeErr)
		}
	}()
}
