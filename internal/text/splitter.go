package text

import (
	"strings"
)

// SplitContent splits content into chunks no longer than maxChunkSize
// characters. Chunks are paragraph-aligned where possible; a paragraph that
// exceeds the cap on its own is split at sentence boundaries instead.
func SplitContent(content string, maxChunkSize int) []string {
	paragraphs := strings.Split(content, "\n\n")
	var chunks []string
	current := ""

	for _, paragraph := range paragraphs {
		if len(current)+len(paragraph)+2 <= maxChunkSize {
			if current != "" {
				current += "\n\n" + paragraph
			} else {
				current = paragraph
			}
			continue
		}

		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}

		if len(paragraph) > maxChunkSize {
			full, tail := splitBySentence(paragraph, maxChunkSize)
			chunks = append(chunks, full...)
			current = tail
		} else {
			current = paragraph
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// splitBySentence breaks an oversized paragraph at ". " boundaries. The
// final fragment is returned separately so the caller can let the next
// paragraph join it.
func splitBySentence(paragraph string, maxChunkSize int) ([]string, string) {
	sentences := strings.Split(paragraph, ". ")
	var full []string
	current := ""

	for _, sentence := range sentences {
		if len(current)+len(sentence)+2 <= maxChunkSize {
			if current != "" {
				current += ". " + sentence
			} else {
				current = sentence
			}
			continue
		}
		if current != "" {
			full = append(full, strings.TrimSpace(current))
		}
		current = sentence
	}

	return full, current
}

// BodyAfterFirstSection returns the lines that follow the first "## "
// heading. Everything up to and including that heading (title, intro,
// table of contents) is not part of the linkable body.
func BodyAfterFirstSection(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var body []string
	started := false

	for _, line := range lines {
		if !started && strings.HasPrefix(line, "## ") {
			started = true
			continue
		}
		if started {
			body = append(body, line)
		}
	}

	return strings.Join(body, "\n")
}
