package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitContent_SingleParagraph(t *testing.T) {
	chunks := SplitContent("short paragraph", 100)
	assert.Equal(t, []string{"short paragraph"}, chunks)
}

func TestSplitContent_Empty(t *testing.T) {
	assert.Empty(t, SplitContent("", 100))
	assert.Empty(t, SplitContent("\n\n\n\n", 100))
}

func TestSplitContent_ParagraphBoundaries(t *testing.T) {
	a := strings.Repeat("a", 40)
	b := strings.Repeat("b", 40)
	c := strings.Repeat("c", 40)
	content := a + "\n\n" + b + "\n\n" + c

	chunks := SplitContent(content, 100)

	// a+b fit together within 100 chars, c starts a new chunk.
	assert.Len(t, chunks, 2)
	assert.Equal(t, a+"\n\n"+b, chunks[0])
	assert.Equal(t, c, chunks[1])
}

func TestSplitContent_ChunkSizeRespected(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 20; i++ {
		paragraphs = append(paragraphs, strings.Repeat("x", 90))
	}
	chunks := SplitContent(strings.Join(paragraphs, "\n\n"), 200)

	assert.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200)
	}
}

func TestSplitContent_OversizedParagraphFallsBackToSentences(t *testing.T) {
	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, strings.Repeat("s", 50))
	}
	paragraph := strings.Join(sentences, ". ")

	chunks := SplitContent(paragraph, 120)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 120)
		assert.NotContains(t, chunk, "\n\n")
	}
}

func TestSplitContent_SentenceTailJoinsNextParagraph(t *testing.T) {
	long := strings.Repeat("s", 50) + ". " + strings.Repeat("t", 50) + ". " + strings.Repeat("u", 20)
	content := long + "\n\nshort trailer"

	chunks := SplitContent(content, 60)

	// The tail fragment of the oversized paragraph must not be lost.
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, strings.Repeat("u", 20))
	assert.Contains(t, joined, "short trailer")
}

func TestBodyAfterFirstSection(t *testing.T) {
	markdown := "# 제목\n\nintro before sections\n\n## 섹션\nbody line one\n## 다음 섹션\nbody line two"

	body := BodyAfterFirstSection(markdown)

	assert.NotContains(t, body, "intro before sections")
	assert.NotContains(t, body, "# 제목")
	assert.Contains(t, body, "body line one")
	assert.Contains(t, body, "body line two")
	// Subsequent headings stay part of the body text.
	assert.Contains(t, body, "## 다음 섹션")
}

func TestBodyAfterFirstSection_NoHeading(t *testing.T) {
	assert.Equal(t, "", BodyAfterFirstSection("plain text with no headings"))
}
