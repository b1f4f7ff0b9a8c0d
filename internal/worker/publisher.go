package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// NoopPublisher fills the SitePublisher seam when no CMS client is
// configured: it logs the article and derives the public URL from the site
// base URL and slug. The catalog and link subsystem behave exactly as they
// would against a real site.
type NoopPublisher struct {
	baseURL string
}

func NewNoopPublisher(baseURL string) *NoopPublisher {
	return &NoopPublisher{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *NoopPublisher) PublishArticle(ctx context.Context, title, markdown, slug string) (string, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, slug)
	slog.InfoContext(ctx, "publishing skipped (no site client configured)",
		"title", title, "url", url, "content_length", len(markdown))
	return url, nil
}
