package worker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outline is the article skeleton the LLM proposes before section prose is
// generated.
type Outline struct {
	Sections []OutlineSection `json:"sections"`
}

type OutlineSection struct {
	Heading string   `json:"heading"`
	Points  []string `json:"points"`
}

func titlePrompt(keyword string, lsiKeywords []string) string {
	var sb strings.Builder
	sb.WriteString("You are an SEO copywriter for a Korean tech blog.\n")
	fmt.Fprintf(&sb, "Write one blog post title for the keyword %q.\n", keyword)
	if len(lsiKeywords) > 0 {
		fmt.Fprintf(&sb, "Related keywords: %s.\n", strings.Join(lsiKeywords, ", "))
	}
	sb.WriteString("The title must contain the keyword, stay under 60 characters, and read naturally in Korean.\n")
	sb.WriteString("Reply with the title only, no quotes, no numbering.")
	return sb.String()
}

func outlinePrompt(keyword, title string, lsiKeywords, longtailKeywords []string) string {
	var sb strings.Builder
	sb.WriteString("You are planning a Korean SEO blog post.\n")
	fmt.Fprintf(&sb, "Title: %s\nPrimary keyword: %s\n", title, keyword)
	if len(lsiKeywords) > 0 {
		fmt.Fprintf(&sb, "LSI keywords: %s\n", strings.Join(lsiKeywords, ", "))
	}
	if len(longtailKeywords) > 0 {
		fmt.Fprintf(&sb, "Long-tail keywords: %s\n", strings.Join(longtailKeywords, ", "))
	}
	sb.WriteString("Propose 4 to 6 H2 sections. Work the long-tail keywords into section headings where natural.\n")
	sb.WriteString("Respond with JSON only, in this shape:\n")
	sb.WriteString(`{"sections": [{"heading": "...", "points": ["...", "..."]}]}`)
	return sb.String()
}

func sectionPrompt(keyword, title string, section OutlineSection, lsiKeywords []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are writing one section of the Korean blog post %q (primary keyword: %s).\n", title, keyword)
	fmt.Fprintf(&sb, "Section heading: %s\n", section.Heading)
	if len(section.Points) > 0 {
		fmt.Fprintf(&sb, "Cover these points: %s\n", strings.Join(section.Points, "; "))
	}
	if len(lsiKeywords) > 0 {
		fmt.Fprintf(&sb, "Use these related keywords naturally where they fit: %s\n", strings.Join(lsiKeywords, ", "))
	}
	sb.WriteString("Write 2-4 paragraphs of markdown prose. Do not repeat the heading, do not add sub-headings.")
	return sb.String()
}

// parseTitle takes the first non-empty line of a completion and strips
// decoration the model tends to add despite instructions.
func parseTitle(completion, keyword string) string {
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'“”#* ")
		if line != "" {
			return line
		}
	}
	return keyword
}

// parseOutline extracts the JSON outline from a completion, tolerating
// markdown code fences. A completion that cannot be parsed falls back to a
// generic section plan; a malformed outline never fails the run.
func parseOutline(completion, keyword string) Outline {
	raw := completion
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	var outline Outline
	if err := json.Unmarshal([]byte(raw), &outline); err == nil && len(outline.Sections) > 0 {
		cleaned := outline.Sections[:0]
		for _, s := range outline.Sections {
			s.Heading = strings.TrimSpace(strings.TrimLeft(s.Heading, "# "))
			if s.Heading != "" {
				cleaned = append(cleaned, s)
			}
		}
		if len(cleaned) > 0 {
			return Outline{Sections: cleaned}
		}
	}

	return defaultOutline(keyword)
}

func defaultOutline(keyword string) Outline {
	return Outline{Sections: []OutlineSection{
		{Heading: fmt.Sprintf("%s란 무엇인가", keyword)},
		{Heading: fmt.Sprintf("%s의 주요 장점", keyword)},
		{Heading: fmt.Sprintf("%s 시작하는 방법", keyword)},
		{Heading: "자주 묻는 질문"},
	}}
}

// assembleMarkdown builds the article body: H1 title, then one H2 block
// per section.
func assembleMarkdown(title string, sections []OutlineSection, bodies []string) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n")
	for i, section := range sections {
		sb.WriteString("\n## " + section.Heading + "\n")
		if i < len(bodies) && bodies[i] != "" {
			sb.WriteString(strings.TrimSpace(bodies[i]) + "\n")
		}
	}
	return sb.String()
}
