package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/features/article"
	"seoforge/features/content"
	"seoforge/features/links"
)

// MockGenerator returns canned completions keyed by prompt content.
type MockGenerator struct {
	err   error
	calls []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls = append(m.calls, prompt)
	if m.err != nil {
		return "", m.err
	}
	switch {
	case strings.Contains(prompt, "blog post title"):
		return "PC 자동화 완벽 가이드", nil
	case strings.Contains(prompt, "Respond with JSON"):
		return `{"sections": [{"heading": "PC 자동화란", "points": ["정의"]}, {"heading": "활용 사례"}]}`, nil
	default:
		return "PC 자동화 도구에 대한 본문 문단입니다.", nil
	}
}

type MockRunTracker struct {
	statuses  []string
	completed bool
	title     string
	postURL   string
	internal  int
	statusErr error
}

func (m *MockRunTracker) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	m.statuses = append(m.statuses, status)
	return m.statusErr
}

func (m *MockRunTracker) Complete(ctx context.Context, runID, title, postID, postURL string, internalLinks, externalLinks int) error {
	m.completed = true
	m.title = title
	m.postURL = postURL
	m.internal = internalLinks
	return nil
}

type MockContentStore struct {
	stored   bool
	post     content.PostInfo
	fullText string
	err      error
}

func (m *MockContentStore) Store(ctx context.Context, post content.PostInfo, fullText string, kw content.Keywords, categories []string) error {
	m.stored = true
	m.post = post
	m.fullText = fullText
	return m.err
}

type MockEnricher struct {
	report links.Report
}

func (m *MockEnricher) Enrich(ctx context.Context, postID string, kw content.Keywords, body string) (string, links.Report) {
	return body + "\n<!-- enriched -->", m.report
}

type MockSitePublisher struct {
	url string
	err error
}

func (m *MockSitePublisher) PublishArticle(ctx context.Context, title, markdown, slug string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.url + "/" + slug, nil
}

func taskMessage(t *testing.T, payload GenerateTaskPayload) *nsq.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return nsq.NewMessage(nsq.MessageID{}, body)
}

func defaultPayload() GenerateTaskPayload {
	return GenerateTaskPayload{
		RunID:       "run-1",
		Keyword:     "PC 자동화",
		LSIKeywords: []string{"PC 자동화 도구"},
		Categories:  []string{"생산성"},
	}
}

func TestGenerateConsumer_HappyPath(t *testing.T) {
	gen := &MockGenerator{}
	runs := &MockRunTracker{}
	store := &MockContentStore{}
	pub := &MockSitePublisher{url: "https://blog.example.com"}
	enricher := &MockEnricher{report: links.Report{InternalLinks: 2, ExternalLinks: 1}}

	consumer := NewGenerateConsumer(gen, runs, store, enricher, pub)
	err := consumer.HandleMessage(taskMessage(t, defaultPayload()))
	require.NoError(t, err)

	assert.Equal(t, []string{article.StatusProcessing}, runs.statuses)
	assert.True(t, runs.completed)
	assert.Equal(t, "PC 자동화 완벽 가이드", runs.title)
	assert.Equal(t, 2, runs.internal)

	// title + outline + one call per section
	assert.Len(t, gen.calls, 4)

	require.True(t, store.stored)
	assert.Contains(t, store.fullText, "<!-- enriched -->")
	assert.Contains(t, store.post.URL, "https://blog.example.com/pc-")
	assert.NotEmpty(t, store.post.ID)
}

func TestGenerateConsumer_PoisonPillNotRetried(t *testing.T) {
	runs := &MockRunTracker{}
	consumer := NewGenerateConsumer(&MockGenerator{}, runs, &MockContentStore{}, &MockEnricher{}, &MockSitePublisher{})

	err := consumer.HandleMessage(nsq.NewMessage(nsq.MessageID{}, []byte("{not json")))
	assert.NoError(t, err)
	assert.Empty(t, runs.statuses)
}

func TestGenerateConsumer_MissingFieldsDropped(t *testing.T) {
	runs := &MockRunTracker{}
	consumer := NewGenerateConsumer(&MockGenerator{}, runs, &MockContentStore{}, &MockEnricher{}, &MockSitePublisher{})

	err := consumer.HandleMessage(taskMessage(t, GenerateTaskPayload{RunID: "run-1"}))
	assert.NoError(t, err)
	assert.Empty(t, runs.statuses)
}

func TestGenerateConsumer_GeneratorFailureMarksRunFailed(t *testing.T) {
	gen := &MockGenerator{err: errors.New("model overloaded")}
	runs := &MockRunTracker{}
	store := &MockContentStore{}
	consumer := NewGenerateConsumer(gen, runs, store, &MockEnricher{}, &MockSitePublisher{})

	err := consumer.HandleMessage(taskMessage(t, defaultPayload()))
	// The failure is recorded on the run, not retried via NSQ.
	assert.NoError(t, err)
	assert.Equal(t, []string{article.StatusProcessing, article.StatusFailed}, runs.statuses)
	assert.False(t, runs.completed)
	assert.False(t, store.stored)
}

func TestGenerateConsumer_StoreFailureMarksRunFailed(t *testing.T) {
	runs := &MockRunTracker{}
	store := &MockContentStore{err: errors.New("disk full")}
	consumer := NewGenerateConsumer(&MockGenerator{}, runs, store, &MockEnricher{}, &MockSitePublisher{url: "https://blog.example.com"})

	err := consumer.HandleMessage(taskMessage(t, defaultPayload()))
	assert.NoError(t, err)
	assert.Equal(t, []string{article.StatusProcessing, article.StatusFailed}, runs.statuses)
}

func TestGenerateConsumer_StatusUpdateFailureRetries(t *testing.T) {
	runs := &MockRunTracker{statusErr: errors.New("db down")}
	consumer := NewGenerateConsumer(&MockGenerator{}, runs, &MockContentStore{}, &MockEnricher{}, &MockSitePublisher{})

	err := consumer.HandleMessage(taskMessage(t, defaultPayload()))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PC 자동화", "pc-자동화"},
		{"Hello World!", "hello-world"},
		{"  spaced  out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}
