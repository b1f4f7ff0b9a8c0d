package links

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
)

// EncodingMode says how a keyword is embedded into a platform URL.
type EncodingMode string

const (
	// EncodeQuery percent-escapes the keyword for a query parameter.
	EncodeQuery EncodingMode = "query"
	// EncodePath keeps the keyword readable in the path, spaces becoming
	// underscores (wiki-style URLs).
	EncodePath EncodingMode = "path"
)

// Platform is one external link destination. Weight biases selection; the
// template holds a single %s for the encoded keyword.
type Platform struct {
	Name        string
	URLTemplate string
	Weight      int
	Encoding    EncodingMode
}

// DefaultPlatforms is the production platform table: search engines first,
// then encyclopedias, video and social.
func DefaultPlatforms() []Platform {
	return []Platform{
		{Name: "google-search", URLTemplate: "https://www.google.com/search?q=%s", Weight: 20, Encoding: EncodeQuery},
		{Name: "naver-search", URLTemplate: "https://search.naver.com/search.naver?query=%s", Weight: 20, Encoding: EncodeQuery},
		{Name: "namuwiki", URLTemplate: "https://namu.wiki/w/%s", Weight: 15, Encoding: EncodePath},
		{Name: "youtube", URLTemplate: "https://www.youtube.com/results?search_query=%s", Weight: 15, Encoding: EncodeQuery},
		{Name: "wikipedia", URLTemplate: "https://ko.wikipedia.org/wiki/%s", Weight: 12, Encoding: EncodePath},
		{Name: "daum-search", URLTemplate: "https://search.daum.net/search?q=%s", Weight: 10, Encoding: EncodeQuery},
		{Name: "x", URLTemplate: "https://twitter.com/search?q=%s", Weight: 8, Encoding: EncodeQuery},
		{Name: "instagram", URLTemplate: "https://www.instagram.com/explore/tags/%s", Weight: 5, Encoding: EncodeQuery},
	}
}

// SelectionPolicy picks one platform per external link. The production
// policy is weighted-random; tests inject a fixed one.
type SelectionPolicy interface {
	Pick(platforms []Platform) Platform
}

type weightedPolicy struct {
	rng *rand.Rand
}

// NewWeightedPolicy selects platforms proportionally to their weights. The
// seed makes runs reproducible.
func NewWeightedPolicy(seed int64) SelectionPolicy {
	return &weightedPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *weightedPolicy) Pick(platforms []Platform) Platform {
	total := 0
	for _, pl := range platforms {
		total += pl.Weight
	}
	if total <= 0 {
		return platforms[0]
	}

	n := p.rng.Intn(total)
	for _, pl := range platforms {
		n -= pl.Weight
		if n < 0 {
			return pl
		}
	}
	return platforms[len(platforms)-1]
}

// FixedPolicy always picks the named platform; falls back to the first
// entry when the name is unknown. Intended for tests.
type FixedPolicy struct {
	Name string
}

func (p FixedPolicy) Pick(platforms []Platform) Platform {
	for _, pl := range platforms {
		if pl.Name == p.Name {
			return pl
		}
	}
	return platforms[0]
}

// ExternalBuilder maps a leftover anchor keyword to a plausible external
// URL. External links carry no similarity score and no reachability
// guarantee; a dead link here is cosmetic.
type ExternalBuilder struct {
	platforms []Platform
	policy    SelectionPolicy
}

func NewExternalBuilder(policy SelectionPolicy) *ExternalBuilder {
	return &ExternalBuilder{platforms: DefaultPlatforms(), policy: policy}
}

func (b *ExternalBuilder) Build(kw Keyword) AllocatedLink {
	platform := b.policy.Pick(b.platforms)
	return AllocatedLink{
		Anchor:   kw.Text,
		URL:      fmt.Sprintf(platform.URLTemplate, encodeKeyword(kw.Text, platform.Encoding)),
		Platform: platform.Name,
		Type:     kw.Type,
	}
}

func encodeKeyword(keyword string, mode EncodingMode) string {
	switch mode {
	case EncodeQuery:
		return url.QueryEscape(keyword)
	case EncodePath:
		return strings.ReplaceAll(keyword, " ", "_")
	default:
		return keyword
	}
}
