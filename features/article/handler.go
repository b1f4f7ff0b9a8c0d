package article

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"seoforge/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Keyword          string   `json:"keyword"`
		LSIKeywords      []string `json:"lsi_keywords"`
		LongtailKeywords []string `json:"longtail_keywords"`
		Categories       []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Keyword == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "keyword is required", http.StatusBadRequest)
		return
	}

	run := &Run{
		Keyword:          req.Keyword,
		LSIKeywords:      req.LSIKeywords,
		LongtailKeywords: req.LongtailKeywords,
		Categories:       req.Categories,
	}
	if err := h.service.Create(ctx, run); err != nil {
		if errors.Is(err, ErrDuplicateKeyword) {
			h.writeError(ctx, w, "DUPLICATE", "A run for this keyword is already in flight", http.StatusConflict)
			return
		}
		slog.ErrorContext(ctx, "failed to create article run", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": run}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runs, err := h.service.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list article runs", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []Run{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": runs,
		"meta": map[string]int{"count": len(runs)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	run, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(ctx, w, "NOT_FOUND", "Run not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(ctx, "failed to get article run", "id", id, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": run}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	slog.InfoContext(ctx, "retrying article run", "id", id)

	if err := h.service.Retry(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(ctx, w, "NOT_FOUND", "Run not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrNotRetryable) {
			h.writeError(ctx, w, "NOT_RETRYABLE", "Only failed runs can be retried", http.StatusConflict)
			return
		}
		slog.ErrorContext(ctx, "failed to retry article run", "id", id, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": "run requeued"}); err != nil {
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
