package worker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		want       string
	}{
		{"plain", "PC 자동화 완벽 가이드", "PC 자동화 완벽 가이드"},
		{"quoted", `"PC 자동화 완벽 가이드"`, "PC 자동화 완벽 가이드"},
		{"leading blank lines", "\n\n제목입니다\n부가 설명", "제목입니다"},
		{"markdown heading", "# 제목입니다", "제목입니다"},
		{"empty falls back to keyword", "   \n  ", "PC 자동화"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTitle(tt.completion, "PC 자동화"))
		})
	}
}

func TestParseOutline_JSON(t *testing.T) {
	completion := "```json\n" + `{"sections": [{"heading": "## 섹션 하나", "points": ["a"]}, {"heading": "섹션 둘"}]}` + "\n```"

	outline := parseOutline(completion, "PC 자동화")

	require.Len(t, outline.Sections, 2)
	assert.Equal(t, "섹션 하나", outline.Sections[0].Heading)
	assert.Equal(t, []string{"a"}, outline.Sections[0].Points)
}

func TestParseOutline_GarbageFallsBack(t *testing.T) {
	outline := parseOutline("the model rambled instead of emitting json", "PC 자동화")

	require.NotEmpty(t, outline.Sections)
	assert.Contains(t, outline.Sections[0].Heading, "PC 자동화")
}

func TestParseOutline_EmptySectionsFallsBack(t *testing.T) {
	outline := parseOutline(`{"sections": []}`, "PC 자동화")
	assert.NotEmpty(t, outline.Sections)
}

func TestAssembleMarkdown(t *testing.T) {
	sections := []OutlineSection{
		{Heading: "첫 섹션"},
		{Heading: "둘째 섹션"},
	}
	bodies := []string{"첫 본문.", "둘째 본문."}

	md := assembleMarkdown("제목", sections, bodies)

	lines := strings.Split(md, "\n")
	assert.Equal(t, "# 제목", lines[0])
	assert.Contains(t, md, "\n## 첫 섹션\n첫 본문.\n")
	assert.Contains(t, md, "\n## 둘째 섹션\n둘째 본문.\n")
}

func TestPrompts_CarryKeywords(t *testing.T) {
	title := titlePrompt("PC 자동화", []string{"PC 자동화 도구"})
	assert.Contains(t, title, "PC 자동화")
	assert.Contains(t, title, "PC 자동화 도구")

	outline := outlinePrompt("PC 자동화", "제목", nil, []string{"초보자를 위한 PC 자동화"})
	assert.Contains(t, outline, "초보자를 위한 PC 자동화")

	section := sectionPrompt("PC 자동화", "제목", OutlineSection{Heading: "섹션", Points: []string{"포인트"}}, nil)
	assert.Contains(t, section, "섹션")
	assert.Contains(t, section, "포인트")
}
