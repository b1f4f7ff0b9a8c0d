package vectorstore

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Kind values for ChunkMeta. The bootstrap sentinel is the placeholder
// entry a fresh index is seeded with; matchers must filter it out of
// result sets.
const (
	KindPost      = "post"
	KindBootstrap = "bootstrap"
)

// ChunkMeta is the denormalized metadata stored next to each vector so
// search results can be assembled without a repository join.
type ChunkMeta struct {
	Kind             string
	PostID           string
	Title            string
	URL              string
	ChunkIndex       int
	TotalChunks      int
	PrimaryKeyword   string
	LSIKeywords      []string
	LongtailKeywords []string
	Categories       []string
	StoredAt         time.Time
}

// Chunk is one piece of text queued for indexing.
type Chunk struct {
	Text string
	Meta ChunkMeta
}

// Result is one nearest-neighbor hit, nearest first. Distance is squared
// L2; convert with Similarity.
type Result struct {
	Text     string
	Meta     ChunkMeta
	Distance float64
}

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Similarity converts a distance into a score in (0, 1], strictly
// decreasing in distance.
func Similarity(distance float64) float64 {
	return 1 / (1 + distance)
}

type entry struct {
	Text   string
	Meta   ChunkMeta
	Vector []float32
}

// Store is a brute-force embedding index held in memory and persisted as a
// single gob blob. It is not safe for concurrent use; the owning repository
// serializes access.
type Store struct {
	embedder Embedder
	entries  []entry
}

func New(embedder Embedder) *Store {
	return &Store{
		embedder: embedder,
		entries:  []entry{bootstrapEntry()},
	}
}

// Load reads the index blob at path. A missing path is not an error: it
// yields a freshly bootstrapped empty store. A corrupt blob is logged and
// also falls back to a fresh store; the index is a rebuildable cache.
func Load(path string, embedder Embedder) *Store {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("vector index unreadable, starting fresh", "path", path, "error", err)
		}
		return New(embedder)
	}
	defer f.Close()

	var entries []entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		slog.Warn("vector index corrupt, starting fresh", "path", path, "error", err)
		return New(embedder)
	}

	s := &Store{embedder: embedder, entries: entries}
	if len(s.entries) == 0 {
		s.entries = []entry{bootstrapEntry()}
	}
	return s
}

// Save writes the index blob to path via a temp-file rename so a failed
// write never truncates the previous blob.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(s.entries); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Add embeds and appends chunks. The index is only mutated after every
// embedding succeeded, so a provider failure leaves it unchanged.
func (s *Store) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, c := range chunks {
		s.entries = append(s.entries, entry{Text: c.Text, Meta: c.Meta, Vector: vectors[i]})
	}
	return nil
}

// Replace atomically swaps all entries belonging to postID for the given
// chunk set. Embedding happens before any mutation: on failure the old
// chunks stay in place. An empty chunk set removes the post.
func (s *Store) Replace(ctx context.Context, postID string, chunks []Chunk) error {
	var fresh []entry
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}
		fresh = make([]entry, len(chunks))
		for i, c := range chunks {
			fresh[i] = entry{Text: c.Text, Meta: c.Meta, Vector: vectors[i]}
		}
	}

	s.Remove(postID)
	s.entries = append(s.entries, fresh...)
	return nil
}

// Remove drops every entry belonging to postID and reports how many were
// dropped.
func (s *Store) Remove(postID string) int {
	kept := s.entries[:0:0]
	removed := 0
	for _, e := range s.entries {
		if e.Meta.Kind == KindPost && e.Meta.PostID == postID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// Search returns up to k entries ordered nearest-first. Fewer results come
// back when the index holds fewer live entries.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]Result, 0, len(s.entries))
	for _, e := range s.entries {
		if len(e.Vector) != len(qv) || len(qv) == 0 {
			continue
		}
		results = append(results, Result{Text: e.Text, Meta: e.Meta, Distance: squaredL2(e.Vector, qv)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count reports live entries, the bootstrap sentinel included.
func (s *Store) Count() int {
	return len(s.entries)
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func bootstrapEntry() entry {
	return entry{
		Text: "index bootstrap placeholder",
		Meta: ChunkMeta{Kind: KindBootstrap, PostID: "init", StoredAt: time.Now()},
	}
}
