// Package links turns a generated article body into one enriched with
// internal links to previously published posts, falling back to external
// platform links when the catalog has no suitable target.
package links

import (
	"seoforge/features/content"
)

type KeywordType string

const (
	TypePrimary  KeywordType = "primary"
	TypeLSI      KeywordType = "lsi"
	TypeLongtail KeywordType = "longtail"
)

// Keyword is one anchor candidate fed into matching and allocation.
type Keyword struct {
	Text string      `json:"text"`
	Type KeywordType `json:"type"`
}

// KeywordSet flattens a post's keywords into typed anchor candidates,
// primary first.
func KeywordSet(kw content.Keywords) []Keyword {
	out := make([]Keyword, 0, 1+len(kw.LSI)+len(kw.Longtail))
	if kw.Primary != "" {
		out = append(out, Keyword{Text: kw.Primary, Type: TypePrimary})
	}
	for _, k := range kw.LSI {
		out = append(out, Keyword{Text: k, Type: TypeLSI})
	}
	for _, k := range kw.Longtail {
		out = append(out, Keyword{Text: k, Type: TypeLongtail})
	}
	return out
}

// Match is one ranked link target returned by a Matcher. MatchedKeyword is
// the target keyword that matched, in its original casing; it is empty for
// embedding matches, where no single keyword is responsible.
type Match struct {
	Post               content.StoredPost `json:"post"`
	MatchedKeyword     string             `json:"matched_keyword"`
	MatchedPostKeyword string             `json:"matched_post_keyword"`
	Score              float64            `json:"score"`
	MatchedCount       int                `json:"matched_count"`
}

// AllocatedLink is one link confirmed present in the body at allocation
// time. TargetPostID is set for internal links, Platform for external ones;
// never both.
type AllocatedLink struct {
	Anchor       string      `json:"anchor"`
	URL          string      `json:"url"`
	Title        string      `json:"title,omitempty"`
	TargetPostID string      `json:"target_post_id,omitempty"`
	Platform     string      `json:"platform,omitempty"`
	Score        float64     `json:"score,omitempty"`
	Type         KeywordType `json:"type"`
}

func (l AllocatedLink) Internal() bool {
	return l.TargetPostID != ""
}

// UnusedLink is an allocated link whose anchor could not be rewritten.
type UnusedLink struct {
	Link   AllocatedLink `json:"link"`
	Reason string        `json:"reason"`
}

// Report summarizes one enrichment run.
type Report struct {
	InternalLinks int          `json:"internal_links"`
	ExternalLinks int          `json:"external_links"`
	Unused        []UnusedLink `json:"unused,omitempty"`
}
