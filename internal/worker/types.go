package worker

import (
	"context"

	"seoforge/features/content"
	"seoforge/features/links"
)

// GenerateTaskPayload is the article.generate message body.
type GenerateTaskPayload struct {
	RunID            string   `json:"run_id"`
	Keyword          string   `json:"keyword"`
	LSIKeywords      []string `json:"lsi_keywords"`
	LongtailKeywords []string `json:"longtail_keywords"`
	Categories       []string `json:"categories"`

	CorrelationID string `json:"correlation_id"`
}

// Generator is the hosted LLM boundary: prompt in, completion out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RunTracker is the slice of the article repository the pipeline drives.
type RunTracker interface {
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	Complete(ctx context.Context, runID, title, postID, postURL string, internalLinks, externalLinks int) error
}

// ContentStore catalogs the finished article for future internal linking.
type ContentStore interface {
	Store(ctx context.Context, post content.PostInfo, fullText string, kw content.Keywords, categories []string) error
}

// LinkEnricher inserts internal/external links into a finished body.
type LinkEnricher interface {
	Enrich(ctx context.Context, postID string, kw content.Keywords, body string) (string, links.Report)
}

// SitePublisher pushes the finished article to the destination site and
// returns its public URL. The production CMS client lives behind this seam;
// NoopPublisher stands in when none is configured.
type SitePublisher interface {
	PublishArticle(ctx context.Context, title, markdown, slug string) (string, error)
}
