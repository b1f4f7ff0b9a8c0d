package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"seoforge/features/content"
	"seoforge/internal/middleware"
)

type ArticleCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type ContentStats interface {
	Stats() content.StorageStats
}

type Handler struct {
	articles ArticleCounter
	catalog  ContentStats
}

func NewHandler(a ArticleCounter, c ContentStats) *Handler {
	return &Handler{articles: a, catalog: c}
}

type StatsResponse struct {
	ArticleRuns     int            `json:"article_runs"`
	RunsByStatus    map[string]int `json:"runs_by_status"`
	CatalogedPosts  int            `json:"cataloged_posts"`
	TotalKeywords   int            `json:"total_keywords"`
	TotalCategories int            `json:"total_categories"`
	VectorCount     int            `json:"vector_count"`
	TotalWords      int            `json:"total_words"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.articles.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count article runs", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count article runs", http.StatusInternalServerError)
		return
	}

	byStatus, err := h.articles.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count runs by status", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count runs by status", http.StatusInternalServerError)
		return
	}

	catalog := h.catalog.Stats()

	resp := StatsResponse{
		ArticleRuns:     total,
		RunsByStatus:    byStatus,
		CatalogedPosts:  catalog.TotalPosts,
		TotalKeywords:   catalog.TotalKeywords,
		TotalCategories: catalog.TotalCategories,
		VectorCount:     catalog.VectorCount,
		TotalWords:      catalog.Usage.TotalWords,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
