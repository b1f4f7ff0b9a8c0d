package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: "gemini-1.5-flash"}, nil
}

// Generate sends one prompt and returns the concatenated text parts of the
// first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "generating content", "model", g.model, "prompt_length", len(prompt))
	m := g.client.GenerativeModel(g.model)

	res, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err)
		return "", err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
