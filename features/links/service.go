package links

import (
	"context"
	"log/slog"
	"strings"

	"seoforge/features/content"
	"seoforge/internal/text"
)

// Service runs the whole enrichment chain: keyword filtering, target
// matching, allocation, insertion. Matching prefers the metadata strategy
// and consults the embedding strategy only when metadata found nothing; the
// metadata path is free and deterministic, the embedding path costs an API
// call per run.
type Service struct {
	matcher   Matcher
	fallback  Matcher
	allocator *Allocator
}

func NewService(matcher Matcher, fallback Matcher, allocator *Allocator) *Service {
	return &Service{matcher: matcher, fallback: fallback, allocator: allocator}
}

// Enrich returns the body with links inserted plus a report of what
// happened. It never fails: any matcher breakage degrades to external-only
// or no links, and the caller publishes the article either way.
func (s *Service) Enrich(ctx context.Context, postID string, kw content.Keywords, body string) (string, Report) {
	used := UsedKeywords(body, KeywordSet(kw))
	if len(used) == 0 {
		slog.InfoContext(ctx, "no anchor keywords present in body, skipping link enrichment", "post_id", postID)
		return body, Report{}
	}

	matches, err := s.matcher.Match(ctx, used, postID)
	if err != nil {
		slog.WarnContext(ctx, "link matching failed, continuing without internal targets", "post_id", postID, "error", err)
		matches = nil
	}
	if len(matches) == 0 && s.fallback != nil {
		matches, err = s.fallback.Match(ctx, used, postID)
		if err != nil {
			slog.WarnContext(ctx, "fallback matching failed", "post_id", postID, "error", err)
			matches = nil
		}
	}

	allocated := s.allocator.Allocate(body, used, matches)
	if len(allocated) == 0 {
		slog.InfoContext(ctx, "no links allocated", "post_id", postID, "keywords", len(used))
		return body, Report{}
	}

	enriched, unused := Insert(body, allocated)

	report := Report{Unused: unused}
	placed := make(map[string]bool, len(unused))
	for _, u := range unused {
		placed[u.Link.Anchor] = true
	}
	for _, link := range allocated {
		if placed[link.Anchor] {
			continue
		}
		if link.Internal() {
			report.InternalLinks++
		} else {
			report.ExternalLinks++
		}
	}

	slog.InfoContext(ctx, "link enrichment complete",
		"post_id", postID,
		"internal", report.InternalLinks,
		"external", report.ExternalLinks,
		"unused", len(report.Unused))
	return enriched, report
}

// UsedKeywords filters anchor candidates down to those literally present in
// the body after the first section heading. Case-sensitive by design: the
// anchor must be replaceable verbatim.
func UsedKeywords(body string, candidates []Keyword) []Keyword {
	main := text.BodyAfterFirstSection(body)
	var used []Keyword
	for _, kw := range candidates {
		if kw.Text != "" && strings.Contains(main, kw.Text) {
			used = append(used, kw)
		}
	}
	return used
}
