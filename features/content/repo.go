package content

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"seoforge/internal/text"
	"seoforge/internal/vectorstore"
)

const (
	metadataFileName = "content_metadata.json"
	indexFileName    = "embedding_index.gob"
)

// VectorIndex is the slice of the embedding store the repository drives.
type VectorIndex interface {
	Replace(ctx context.Context, postID string, chunks []vectorstore.Chunk) error
	Search(ctx context.Context, query string, k int) ([]vectorstore.Result, error)
	Save(path string) error
	Count() int
}

// Repository is the durable catalog of published posts plus the embedding
// index built from their bodies. One Repository is constructed per process
// and passed to every component that needs it; there is no ambient
// module-level state. The mutex serializes the HTTP handlers against the
// NSQ consumer within this process — concurrent writes from a second
// process are unsupported.
type Repository struct {
	mu        sync.Mutex
	dir       string
	chunkSize int
	index     VectorIndex
	meta      *metadataFile
}

func NewRepository(dir string, chunkSize int, index VectorIndex) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	r := &Repository{dir: dir, chunkSize: chunkSize, index: index}
	r.meta = loadMetadata(r.metadataPath())
	slog.Info("content repository ready", "dir", dir, "posts", len(r.meta.Posts))
	return r, nil
}

// IndexPathFor is where a repository rooted at dir persists the embedding
// index blob. Exposed so the index can be loaded before the repository is
// constructed.
func IndexPathFor(dir string) string {
	return filepath.Join(dir, indexFileName)
}

// IndexPath is where this repository persists the embedding index blob.
func (r *Repository) IndexPath() string {
	return IndexPathFor(r.dir)
}

func (r *Repository) metadataPath() string {
	return filepath.Join(r.dir, metadataFileName)
}

// Store catalogs a published post and indexes its body. Re-storing an
// identical body for a known post id is a successful no-op. A changed body
// replaces all of the post's chunks atomically; stale chunks never
// accumulate. Any failure before the final persist leaves prior durable
// state intact.
func (r *Repository) Store(ctx context.Context, post PostInfo, fullText string, kw Keywords, categories []string) error {
	if post.ID == "" {
		return fmt.Errorf("post id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hash := contentHash(fullText)
	if existing, ok := r.meta.Posts[post.ID]; ok && existing.ContentHash == hash {
		slog.InfoContext(ctx, "identical content already stored", "post_id", post.ID)
		return nil
	}

	chunks := text.SplitContent(fullText, r.chunkSize)
	now := time.Now()

	indexChunks := make([]vectorstore.Chunk, len(chunks))
	for i, chunk := range chunks {
		indexChunks[i] = vectorstore.Chunk{
			Text: chunk,
			Meta: vectorstore.ChunkMeta{
				Kind:             vectorstore.KindPost,
				PostID:           post.ID,
				Title:            post.Title,
				URL:              post.URL,
				ChunkIndex:       i,
				TotalChunks:      len(chunks),
				PrimaryKeyword:   kw.Primary,
				LSIKeywords:      kw.LSI,
				LongtailKeywords: kw.Longtail,
				Categories:       categories,
				StoredAt:         now,
			},
		}
	}

	// Embeds first, mutates after; a provider failure here changes nothing.
	if err := r.index.Replace(ctx, post.ID, indexChunks); err != nil {
		slog.ErrorContext(ctx, "indexing post failed", "post_id", post.ID, "error", err)
		return err
	}

	r.meta.Posts[post.ID] = StoredPost{
		ID:               post.ID,
		Title:            post.Title,
		URL:              post.URL,
		PublishedAt:      post.PublishedAt,
		PrimaryKeyword:   kw.Primary,
		LSIKeywords:      kw.LSI,
		LongtailKeywords: kw.Longtail,
		Categories:       categories,
		ContentLength:    len(fullText),
		WordCount:        len(strings.Fields(fullText)),
		ChunkCount:       len(chunks),
		ContentHash:      hash,
		StoredAt:         now,
	}

	for _, keyword := range kw.All() {
		r.addToIndex(r.meta.Keywords, keyword, post.ID)
	}
	for _, category := range categories {
		r.addToIndex(r.meta.Categories, category, post.ID)
	}
	r.recomputeStats()

	if err := r.persistLocked(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "post stored", "post_id", post.ID, "title", post.Title, "chunks", len(chunks))
	return nil
}

func (r *Repository) addToIndex(index map[string][]string, key, postID string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	for _, id := range index[key] {
		if id == postID {
			return
		}
	}
	index[key] = append(index[key], postID)
}

func (r *Repository) recomputeStats() {
	stats := UsageStats{TotalPosts: len(r.meta.Posts)}
	var last *time.Time
	for _, p := range r.meta.Posts {
		stats.TotalWords += p.WordCount
		if last == nil || p.StoredAt.After(*last) {
			t := p.StoredAt
			last = &t
		}
	}
	stats.LastPostDate = last
	r.meta.Stats = stats
}

// persistLocked writes the index blob first, then the metadata file. If the
// index write fails the old metadata still matches the old blob. A metadata
// failure after a successful index write is logged and surfaced; the index
// is a rebuildable cache, the metadata file is authoritative.
func (r *Repository) persistLocked(ctx context.Context) error {
	if err := r.index.Save(r.IndexPath()); err != nil {
		slog.ErrorContext(ctx, "persisting vector index failed", "error", err)
		return err
	}

	r.meta.LastUpdated = time.Now()
	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".metadata-*")
	if err != nil {
		return fmt.Errorf("create temp metadata: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata: %w", err)
	}
	return os.Rename(tmp.Name(), r.metadataPath())
}

// FindByKeyword returns the posts indexed under an exact keyword. No
// ranking; O(matching set).
func (r *Repository) FindByKeyword(keyword string) []StoredPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(r.meta.Keywords[strings.TrimSpace(keyword)])
}

// FindByCategory returns the posts indexed under an exact category.
func (r *Repository) FindByCategory(category string) []StoredPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(r.meta.Categories[strings.TrimSpace(category)])
}

func (r *Repository) collect(ids []string) []StoredPost {
	var posts []StoredPost
	for _, id := range ids {
		if p, ok := r.meta.Posts[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts
}

// Get looks up one post by id.
func (r *Repository) Get(id string) (StoredPost, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.meta.Posts[id]
	return p, ok
}

// Posts returns every cataloged post ordered by id, so iteration order is
// stable across calls.
func (r *Repository) Posts() []StoredPost {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts := make([]StoredPost, 0, len(r.meta.Posts))
	for _, p := range r.meta.Posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}

// Search runs a nearest-neighbor query against the embedding index.
func (r *Repository) Search(ctx context.Context, query string, k int) ([]vectorstore.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index.Search(ctx, query, k)
}

// Stats reports catalog and index sizes.
func (r *Repository) Stats() StorageStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return StorageStats{
		TotalPosts:      len(r.meta.Posts),
		TotalKeywords:   len(r.meta.Keywords),
		TotalCategories: len(r.meta.Categories),
		VectorCount:     r.index.Count(),
		Usage:           r.meta.Stats,
	}
}

func contentHash(content string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(content)))
}

// loadMetadata reads the catalog file. Missing file: fresh structure.
// Corrupt file: warn and fall back to a fresh structure — the catalog can
// be rebuilt by re-ingesting posts, crashing the process cannot.
func loadMetadata(path string) *metadataFile {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("metadata file unreadable, starting fresh", "path", path, "error", err)
		}
		return newMetadataFile()
	}

	meta := newMetadataFile()
	if err := json.Unmarshal(data, meta); err != nil {
		slog.Warn("metadata file corrupt, starting fresh", "path", path, "error", err)
		return newMetadataFile()
	}

	// Defend against hand-edited files with null maps.
	if meta.Posts == nil {
		meta.Posts = map[string]StoredPost{}
	}
	if meta.Keywords == nil {
		meta.Keywords = map[string][]string{}
	}
	if meta.Categories == nil {
		meta.Categories = map[string][]string{}
	}
	return meta
}
