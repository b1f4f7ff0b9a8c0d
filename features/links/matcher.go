package links

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"seoforge/features/content"
	"seoforge/internal/vectorstore"
)

// Matcher ranks catalog posts as link targets for a keyword set. The two
// implementations score on incompatible scales (keyword-overlap ratio vs
// embedding similarity), so each carries its own threshold; the constants
// are never shared.
type Matcher interface {
	Match(ctx context.Context, targetKeywords []Keyword, excludePostID string) ([]Match, error)
}

// PostLister is the slice of the content repository the keyword matcher
// reads.
type PostLister interface {
	Posts() []content.StoredPost
}

// KeywordMatcher matches on metadata alone: case-insensitive substring
// containment in either direction between each target keyword and each of a
// post's keywords. It needs no embedding calls, so it is the preferred
// strategy whenever metadata suffices. Short keywords can match unrelated
// longer phrases; that is a known precision limit of containment matching.
type KeywordMatcher struct {
	catalog    PostLister
	minScore   float64
	minMatches int
}

func NewKeywordMatcher(catalog PostLister, minScore float64, minMatches int) *KeywordMatcher {
	if minMatches < 1 {
		minMatches = 1
	}
	return &KeywordMatcher{catalog: catalog, minScore: minScore, minMatches: minMatches}
}

func (m *KeywordMatcher) Match(ctx context.Context, targetKeywords []Keyword, excludePostID string) ([]Match, error) {
	targets := make([]string, 0, len(targetKeywords))
	lowered := make([]string, 0, len(targetKeywords))
	for _, kw := range targetKeywords {
		t := strings.TrimSpace(kw.Text)
		if t == "" {
			continue
		}
		targets = append(targets, t)
		lowered = append(lowered, strings.ToLower(t))
	}
	if len(targets) == 0 {
		return nil, nil
	}

	var matches []Match
	for _, post := range m.catalog.Posts() {
		if post.ID == excludePostID {
			continue
		}

		postKeywords := postKeywordSet(post)
		count := 0
		var firstTarget, firstPostKw string
		for i, target := range lowered {
			for _, postKw := range postKeywords {
				if strings.Contains(postKw, target) || strings.Contains(target, postKw) {
					count++
					if firstTarget == "" {
						firstTarget = targets[i]
						firstPostKw = postKw
					}
					break // one match per target keyword
				}
			}
		}

		if count < m.minMatches {
			continue
		}
		score := float64(count) / float64(len(targets))
		if score < m.minScore {
			continue
		}
		matches = append(matches, Match{
			Post:               post,
			MatchedKeyword:     firstTarget,
			MatchedPostKeyword: firstPostKw,
			Score:              score,
			MatchedCount:       count,
		})
	}

	// Score descending; post id breaks ties so runs are reproducible.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Post.ID < matches[j].Post.ID
	})
	return matches, nil
}

func postKeywordSet(post content.StoredPost) []string {
	raw := make([]string, 0, 1+len(post.LSIKeywords)+len(post.LongtailKeywords))
	raw = append(raw, post.PrimaryKeyword)
	raw = append(raw, post.LSIKeywords...)
	raw = append(raw, post.LongtailKeywords...)

	out := raw[:0]
	for _, kw := range raw {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Searcher is the slice of the embedding index the embedding matcher
// queries.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]vectorstore.Result, error)
}

// EmbeddingMatcher ranks targets by nearest-neighbor search over the chunk
// index. A provider failure degrades to zero matches rather than failing
// the run; linking is richness, not correctness.
type EmbeddingMatcher struct {
	index         Searcher
	minSimilarity float64
	k             int
}

func NewEmbeddingMatcher(index Searcher, minSimilarity float64, k int) *EmbeddingMatcher {
	if k <= 0 {
		k = 5
	}
	return &EmbeddingMatcher{index: index, minSimilarity: minSimilarity, k: k}
}

func (m *EmbeddingMatcher) Match(ctx context.Context, targetKeywords []Keyword, excludePostID string) ([]Match, error) {
	parts := make([]string, 0, len(targetKeywords))
	for _, kw := range targetKeywords {
		if t := strings.TrimSpace(kw.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	query := strings.Join(parts, " ")

	// Overfetch: multiple chunks of one post can crowd the top of the
	// result list before deduplication.
	results, err := m.index.Search(ctx, query, m.k*2)
	if err != nil {
		slog.WarnContext(ctx, "embedding search unavailable, returning no matches", "error", err)
		return nil, nil
	}

	seen := make(map[string]bool)
	var matches []Match
	for _, res := range results {
		meta := res.Meta
		if meta.Kind != vectorstore.KindPost {
			continue
		}
		if meta.PostID == "" || meta.PostID == excludePostID || seen[meta.PostID] {
			continue
		}

		similarity := vectorstore.Similarity(res.Distance)
		if similarity < m.minSimilarity {
			continue
		}
		seen[meta.PostID] = true

		matches = append(matches, Match{
			Post: content.StoredPost{
				ID:               meta.PostID,
				Title:            meta.Title,
				URL:              meta.URL,
				PrimaryKeyword:   meta.PrimaryKeyword,
				LSIKeywords:      meta.LSIKeywords,
				LongtailKeywords: meta.LongtailKeywords,
				Categories:       meta.Categories,
			},
			Score: similarity,
		})
		if len(matches) >= m.k {
			break
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Post.ID < matches[j].Post.ID
	})
	return matches, nil
}
