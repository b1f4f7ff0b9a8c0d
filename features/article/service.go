package article

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"seoforge/internal/config"
	"seoforge/internal/middleware"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

var (
	ErrDuplicateKeyword = fmt.Errorf("a run for this keyword is already in flight")
	ErrNotRetryable     = fmt.Errorf("only failed runs can be retried")
)

// Create records a pending run and enqueues it for the pipeline worker. A
// second request for a keyword that is still pending or processing is
// rejected; re-running a completed keyword is allowed.
func (s *Service) Create(ctx context.Context, run *Run) error {
	run.Keyword = strings.TrimSpace(run.Keyword)
	if run.Keyword == "" {
		return fmt.Errorf("keyword is required")
	}

	exists, err := s.repo.ExistsPendingKeyword(ctx, run.Keyword)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateKeyword
	}

	run.Status = StatusPending
	if err := s.repo.Save(ctx, run); err != nil {
		return err
	}

	if err := s.publishRun(ctx, run); err != nil {
		// The run stays pending; a retry or worker restart can pick it
		// up once the broker is back.
		return err
	}
	return nil
}

// Retry re-enqueues a failed run. The run moves back to pending before the
// event goes out, so a crash between the two leaves it visible for another
// retry rather than silently lost.
func (s *Service) Retry(ctx context.Context, id string) error {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.Status != StatusFailed {
		return ErrNotRetryable
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPending, ""); err != nil {
		return err
	}
	return s.publishRun(ctx, run)
}

func (s *Service) publishRun(ctx context.Context, run *Run) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"run_id":            run.ID,
		"keyword":           run.Keyword,
		"lsi_keywords":      run.LSIKeywords,
		"longtail_keywords": run.LongtailKeywords,
		"categories":        run.Categories,
		"correlation_id":    middleware.GetCorrelationID(ctx),
	})
	if err := s.pub.Publish(config.TopicArticleGenerate, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish generation task", "error", err, "run_id", run.ID)
		return err
	}

	slog.InfoContext(ctx, "published generation task", "run_id", run.ID, "keyword", run.Keyword)
	return nil
}

// UpdateStatus moves a run between pipeline states.
func (s *Service) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	return s.repo.UpdateStatus(ctx, id, status, errMsg)
}

// Complete records the final state of a successful run.
func (s *Service) Complete(ctx context.Context, runID, title, postID, postURL string, internalLinks, externalLinks int) error {
	return s.repo.Complete(ctx, &Run{
		ID:            runID,
		Title:         title,
		PostID:        postID,
		PostURL:       postURL,
		InternalLinks: internalLinks,
		ExternalLinks: externalLinks,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Run, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}
