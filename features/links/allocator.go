package links

import (
	"strings"

	"seoforge/internal/text"
)

// Allocator assigns anchor phrases to link targets. Internal targets are
// consumed in descending match-score order under two exclusions: one link
// per target post, one link per anchor text. Anchors that received no
// internal target fall back to external platform links. No anchor appears
// twice across the combined output, and every allocated anchor is literally
// present in the body at allocation time.
type Allocator struct {
	external    *ExternalBuilder
	maxInternal int
	maxExternal int
}

func NewAllocator(external *ExternalBuilder, maxInternal, maxExternal int) *Allocator {
	return &Allocator{external: external, maxInternal: maxInternal, maxExternal: maxExternal}
}

// Allocate builds the link set for one body. Keywords not literally present
// (case-sensitive) in the body after the first section heading are dropped
// up front; stale or hallucinated keyword lists never produce links. A nil
// result is the normal outcome for an empty catalog or a keyword-free body.
func (a *Allocator) Allocate(body string, candidates []Keyword, matches []Match) []AllocatedLink {
	main := text.BodyAfterFirstSection(body)

	present := make([]Keyword, 0, len(candidates))
	presentSet := make(map[string]Keyword, len(candidates))
	for _, kw := range candidates {
		if kw.Text == "" || !strings.Contains(main, kw.Text) {
			continue
		}
		if _, dup := presentSet[kw.Text]; dup {
			continue
		}
		present = append(present, kw)
		presentSet[kw.Text] = kw
	}
	if len(present) == 0 {
		return nil
	}

	var allocated []AllocatedLink
	usedAnchors := make(map[string]bool)
	usedTargets := make(map[string]bool)

	internal := 0
	for _, m := range matches {
		if internal >= a.maxInternal {
			break
		}
		if m.Post.ID == "" || usedTargets[m.Post.ID] {
			continue
		}

		anchor := m.MatchedKeyword
		if anchor != "" {
			// Keyword matches are bound to the keyword that produced them.
			// An absent or already-claimed anchor skips the candidate; it
			// never borrows another keyword's anchor.
			if !containsAnchor(presentSet, anchor) || usedAnchors[anchor] {
				continue
			}
		} else {
			// Embedding matches carry no responsible keyword; pair the
			// target with the best remaining anchor instead.
			anchor = firstFreeAnchor(present, usedAnchors)
			if anchor == "" {
				continue
			}
		}

		allocated = append(allocated, AllocatedLink{
			Anchor:       anchor,
			URL:          m.Post.URL,
			Title:        m.Post.Title,
			TargetPostID: m.Post.ID,
			Score:        m.Score,
			Type:         presentSet[anchor].Type,
		})
		usedAnchors[anchor] = true
		usedTargets[m.Post.ID] = true
		internal++
	}

	if a.external == nil {
		return allocated
	}

	external := 0
	for _, kw := range present {
		if external >= a.maxExternal {
			break
		}
		if usedAnchors[kw.Text] {
			continue
		}
		allocated = append(allocated, a.external.Build(kw))
		usedAnchors[kw.Text] = true
		external++
	}
	return allocated
}

func containsAnchor(set map[string]Keyword, anchor string) bool {
	_, ok := set[anchor]
	return ok
}

func firstFreeAnchor(present []Keyword, used map[string]bool) string {
	for _, kw := range present {
		if !used[kw.Text] {
			return kw.Text
		}
	}
	return ""
}
