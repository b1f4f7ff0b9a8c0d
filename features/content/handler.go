package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/middleware"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Ingest catalogs an already-published post so future articles can link to
// it.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID               string   `json:"id"`
		Title            string   `json:"title"`
		URL              string   `json:"url"`
		Content          string   `json:"content"`
		PrimaryKeyword   string   `json:"primary_keyword"`
		LSIKeywords      []string `json:"lsi_keywords"`
		LongtailKeywords []string `json:"longtail_keywords"`
		Categories       []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "title is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "content is required", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	post := PostInfo{ID: req.ID, Title: req.Title, URL: req.URL, PublishedAt: time.Now()}
	kw := Keywords{Primary: req.PrimaryKeyword, LSI: req.LSIKeywords, Longtail: req.LongtailKeywords}

	if err := h.repo.Store(r.Context(), post, req.Content, kw, req.Categories); err != nil {
		slog.Error("post ingestion failed", "error", err, "post_id", req.ID)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	stored, _ := h.repo.Get(req.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": stored}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Search looks posts up by keyword or category (metadata only, no
// embeddings).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	category := r.URL.Query().Get("category")

	var posts []StoredPost
	switch {
	case keyword != "":
		posts = h.repo.FindByKeyword(keyword)
	case category != "":
		posts = h.repo.FindByCategory(category)
	default:
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "keyword or category query parameter is required", http.StatusBadRequest)
		return
	}

	if posts == nil {
		posts = []StoredPost{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": posts}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Get returns one cataloged post.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	post, ok := h.repo.Get(id)
	if !ok {
		h.writeError(r.Context(), w, "NOT_FOUND", "post not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": post}); err != nil {
		slog.Error("failed to encode response", "error", err)
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
