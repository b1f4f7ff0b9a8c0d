package links_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/features/content"
	"seoforge/features/links"
)

const allocBody = "# 제목\n\n소개 문단입니다.\n\n## 첫 섹션\nPC 자동화 도구와 매크로 자동화를 다룹니다.\n업무 효율 이야기도 합니다.\n"

func internalMatch(postID, matchedKeyword string, score float64) links.Match {
	return links.Match{
		Post: content.StoredPost{
			ID:    postID,
			Title: "title " + postID,
			URL:   "https://example.com/" + postID,
		},
		MatchedKeyword: matchedKeyword,
		Score:          score,
	}
}

func TestAllocator_AssignsPresentAnchors(t *testing.T) {
	a := links.NewAllocator(nil, 3, 0)

	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화"),
		[]links.Match{internalMatch("post-1", "PC 자동화 도구", 1.0)})

	require.Len(t, allocated, 1)
	assert.Equal(t, "PC 자동화 도구", allocated[0].Anchor)
	assert.Equal(t, "post-1", allocated[0].TargetPostID)
	assert.True(t, allocated[0].Internal())
}

func TestAllocator_DropsAnchorsAbsentFromBody(t *testing.T) {
	a := links.NewAllocator(nil, 3, 0)

	allocated := a.Allocate(allocBody,
		kws("본문에 없는 키워드"),
		[]links.Match{internalMatch("post-1", "본문에 없는 키워드", 1.0)})

	assert.Empty(t, allocated)
}

func TestAllocator_AnchorMatchIsCaseSensitive(t *testing.T) {
	body := "## Section\nWe cover Python Automation here.\n"
	a := links.NewAllocator(nil, 3, 0)

	allocated := a.Allocate(body,
		kws("python automation"),
		[]links.Match{internalMatch("post-1", "python automation", 1.0)})

	assert.Empty(t, allocated)
}

func TestAllocator_RejectsDuplicateAnchor(t *testing.T) {
	a := links.NewAllocator(nil, 3, 0)

	// Two targets matched the same anchor; only the higher-scored one may
	// claim it, and no second anchor is available for the other target.
	allocated := a.Allocate("## 섹션\n자동화 이야기입니다.\n",
		kws("자동화"),
		[]links.Match{
			internalMatch("post-1", "자동화", 1.0),
			internalMatch("post-2", "자동화", 0.5),
		})

	require.Len(t, allocated, 1)
	assert.Equal(t, "post-1", allocated[0].TargetPostID)
}

func TestAllocator_ClaimedAnchorSkipsLaterKeywordMatch(t *testing.T) {
	external := links.NewExternalBuilder(links.FixedPolicy{Name: "google-search"})
	a := links.NewAllocator(external, 3, 4)

	// Both targets matched "자동화". The weaker one is skipped outright even
	// though "매크로" is still free; a keyword match never borrows another
	// keyword's anchor, so "매크로" stays available for the external
	// fallback.
	allocated := a.Allocate("## 섹션\n자동화와 매크로 이야기입니다.\n",
		kws("자동화", "매크로"),
		[]links.Match{
			internalMatch("post-1", "자동화", 1.0),
			internalMatch("post-2", "자동화", 0.5),
		})

	require.Len(t, allocated, 2)
	assert.Equal(t, "자동화", allocated[0].Anchor)
	assert.Equal(t, "post-1", allocated[0].TargetPostID)
	assert.False(t, allocated[1].Internal())
	assert.Equal(t, "매크로", allocated[1].Anchor)
}

func TestAllocator_OneLinkPerTargetPost(t *testing.T) {
	a := links.NewAllocator(nil, 3, 0)

	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화"),
		[]links.Match{
			internalMatch("post-1", "PC 자동화 도구", 1.0),
			internalMatch("post-1", "매크로 자동화", 0.9),
		})

	require.Len(t, allocated, 1)
}

func TestAllocator_RespectsMaxInternal(t *testing.T) {
	a := links.NewAllocator(nil, 1, 0)

	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화"),
		[]links.Match{
			internalMatch("post-1", "PC 자동화 도구", 1.0),
			internalMatch("post-2", "매크로 자동화", 0.9),
		})

	require.Len(t, allocated, 1)
	assert.Equal(t, "post-1", allocated[0].TargetPostID)
}

func TestAllocator_EmbeddingMatchGetsFreeAnchor(t *testing.T) {
	a := links.NewAllocator(nil, 3, 0)

	// Embedding matches carry no matched keyword.
	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화"),
		[]links.Match{internalMatch("post-1", "", 0.8)})

	require.Len(t, allocated, 1)
	assert.Equal(t, "PC 자동화 도구", allocated[0].Anchor)
}

func TestAllocator_ExternalFallbackForLeftovers(t *testing.T) {
	external := links.NewExternalBuilder(links.FixedPolicy{Name: "google-search"})
	a := links.NewAllocator(external, 3, 4)

	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화"),
		[]links.Match{internalMatch("post-1", "PC 자동화 도구", 1.0)})

	require.Len(t, allocated, 2)
	assert.True(t, allocated[0].Internal())
	assert.False(t, allocated[1].Internal())
	assert.Equal(t, "매크로 자동화", allocated[1].Anchor)
	assert.Equal(t, "google-search", allocated[1].Platform)
}

func TestAllocator_NoAnchorRepeatsAcrossCombinedOutput(t *testing.T) {
	external := links.NewExternalBuilder(links.FixedPolicy{Name: "naver-search"})
	a := links.NewAllocator(external, 3, 4)

	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화", "업무 효율"),
		[]links.Match{
			internalMatch("post-1", "PC 자동화 도구", 1.0),
			internalMatch("post-2", "매크로 자동화", 0.9),
		})

	seen := map[string]bool{}
	for _, link := range allocated {
		assert.False(t, seen[link.Anchor], "anchor %q allocated twice", link.Anchor)
		seen[link.Anchor] = true
	}
	assert.Len(t, allocated, 3)
}

func TestAllocator_RespectsMaxExternal(t *testing.T) {
	external := links.NewExternalBuilder(links.FixedPolicy{Name: "google-search"})
	a := links.NewAllocator(external, 0, 1)

	allocated := a.Allocate(allocBody,
		kws("PC 자동화 도구", "매크로 자동화", "업무 효율"), nil)

	require.Len(t, allocated, 1)
	assert.False(t, allocated[0].Internal())
}

func TestAllocator_NoCandidatesIsNormal(t *testing.T) {
	a := links.NewAllocator(links.NewExternalBuilder(links.FixedPolicy{}), 3, 4)

	assert.Empty(t, a.Allocate(allocBody, nil, nil))
	assert.Empty(t, a.Allocate("본문 없음", kws("PC 자동화 도구"), nil))
}
