package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"seoforge/features/article"
	"seoforge/features/content"
	"seoforge/internal/middleware"
)

const generateTimeout = 5 * time.Minute

// GenerateConsumer runs the article pipeline for one article.generate task:
// title, outline, per-section prose, link enrichment, publishing, and
// cataloging the result for future internal links.
type GenerateConsumer struct {
	generator Generator
	runs      RunTracker
	catalog   ContentStore
	enricher  LinkEnricher
	publisher SitePublisher
}

func NewGenerateConsumer(g Generator, r RunTracker, c ContentStore, e LinkEnricher, p SitePublisher) *GenerateConsumer {
	return &GenerateConsumer{
		generator: g,
		runs:      r,
		catalog:   c,
		enricher:  e,
		publisher: p,
	}
}

func (h *GenerateConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload GenerateTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}
	if payload.RunID == "" || payload.Keyword == "" {
		slog.Error("missing required fields, dropping", "run_id", payload.RunID, "keyword", payload.Keyword)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	if err := h.runs.UpdateStatus(ctx, payload.RunID, article.StatusProcessing, ""); err != nil {
		slog.ErrorContext(ctx, "failed to mark run processing", "run_id", payload.RunID, "error", err)
		return err // Retry
	}

	if err := h.generate(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "article generation failed", "run_id", payload.RunID, "error", err)
		if uerr := h.runs.UpdateStatus(ctx, payload.RunID, article.StatusFailed, err.Error()); uerr != nil {
			slog.ErrorContext(ctx, "failed to mark run failed", "run_id", payload.RunID, "error", uerr)
		}
		// The run is recorded as failed; retrying the message would
		// double-generate.
		return nil
	}

	slog.InfoContext(ctx, "article generation completed", "run_id", payload.RunID, "keyword", payload.Keyword)
	return nil
}

func (h *GenerateConsumer) generate(ctx context.Context, payload GenerateTaskPayload) error {
	kw := content.Keywords{
		Primary:  payload.Keyword,
		LSI:      payload.LSIKeywords,
		Longtail: payload.LongtailKeywords,
	}

	// 1. Title
	completion, err := h.generator.Generate(ctx, titlePrompt(payload.Keyword, payload.LSIKeywords))
	if err != nil {
		return fmt.Errorf("generate title: %w", err)
	}
	title := parseTitle(completion, payload.Keyword)

	// 2. Outline
	completion, err = h.generator.Generate(ctx, outlinePrompt(payload.Keyword, title, payload.LSIKeywords, payload.LongtailKeywords))
	if err != nil {
		return fmt.Errorf("generate outline: %w", err)
	}
	outline := parseOutline(completion, payload.Keyword)

	// 3. Section prose
	bodies := make([]string, len(outline.Sections))
	for i, section := range outline.Sections {
		body, err := h.generator.Generate(ctx, sectionPrompt(payload.Keyword, title, section, payload.LSIKeywords))
		if err != nil {
			return fmt.Errorf("generate section %q: %w", section.Heading, err)
		}
		bodies[i] = body
	}
	markdown := assembleMarkdown(title, outline.Sections, bodies)

	postID := uuid.New().String()

	// 4. Link enrichment. Never fails; a degraded run just carries fewer
	// links.
	enriched, report := h.enricher.Enrich(ctx, postID, kw, markdown)

	// 5. Publish
	postURL, err := h.publisher.PublishArticle(ctx, title, enriched, slugify(payload.Keyword))
	if err != nil {
		return fmt.Errorf("publish article: %w", err)
	}

	// 6. Catalog the published post so future articles can link to it.
	post := content.PostInfo{ID: postID, Title: title, URL: postURL, PublishedAt: time.Now()}
	if err := h.catalog.Store(ctx, post, enriched, kw, payload.Categories); err != nil {
		return fmt.Errorf("store post: %w", err)
	}

	return h.runs.Complete(ctx, payload.RunID, title, postID, postURL,
		report.InternalLinks, report.ExternalLinks)
}

// slugify keeps unicode letters and digits, collapsing everything else to
// single hyphens.
func slugify(s string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r == ' ' || r == '-' || r == '_' || r == '/':
			if !lastHyphen {
				sb.WriteRune('-')
				lastHyphen = true
			}
		case strings.ContainsRune("!?.,:;()[]{}'\"“”", r):
			// drop punctuation
		default:
			sb.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
