package content

import (
	"time"
)

// PostInfo identifies a published post being ingested into the catalog.
type PostInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// Keywords is the keyword set attached to a post: one primary keyword plus
// the LSI and long-tail expansions generated alongside it.
type Keywords struct {
	Primary  string   `json:"primary"`
	LSI      []string `json:"lsi"`
	Longtail []string `json:"longtail"`
}

// All returns every keyword, primary first.
func (k Keywords) All() []string {
	out := make([]string, 0, 1+len(k.LSI)+len(k.Longtail))
	if k.Primary != "" {
		out = append(out, k.Primary)
	}
	out = append(out, k.LSI...)
	out = append(out, k.Longtail...)
	return out
}

// StoredPost is one cataloged post. Entries are immutable after storage
// except for hash/chunk bookkeeping on explicit re-ingestion.
type StoredPost struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	URL              string            `json:"url"`
	PublishedAt      time.Time         `json:"published_at"`
	PrimaryKeyword   string            `json:"primary_keyword"`
	LSIKeywords      []string          `json:"lsi_keywords"`
	LongtailKeywords []string          `json:"longtail_keywords"`
	Categories       []string          `json:"categories"`
	ContentLength    int               `json:"content_length"`
	WordCount        int               `json:"word_count"`
	ChunkCount       int               `json:"chunk_count"`
	ContentHash      string            `json:"content_hash"`
	StoredAt         time.Time         `json:"stored_at"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// UsageStats is the running stats block of the metadata file.
type UsageStats struct {
	TotalPosts   int        `json:"total_posts"`
	TotalWords   int        `json:"total_words"`
	LastPostDate *time.Time `json:"last_post_date"`
}

// StorageStats is the snapshot returned by Repository.Stats.
type StorageStats struct {
	TotalPosts      int        `json:"total_posts"`
	TotalKeywords   int        `json:"total_keywords"`
	TotalCategories int        `json:"total_categories"`
	VectorCount     int        `json:"vector_count"`
	Usage           UsageStats `json:"stats"`
}

// metadataFile is the durable catalog structure. Version gates future
// schema changes; Extra preserves keys this build does not know about.
type metadataFile struct {
	Version     int                   `json:"version"`
	CreatedAt   time.Time             `json:"created_at"`
	LastUpdated time.Time             `json:"last_updated"`
	Posts       map[string]StoredPost `json:"posts"`
	Keywords    map[string][]string   `json:"keywords"`
	Categories  map[string][]string   `json:"categories"`
	Stats       UsageStats            `json:"stats"`
	Extra       map[string]string     `json:"extra,omitempty"`
}

const metadataVersion = 1

func newMetadataFile() *metadataFile {
	now := time.Now()
	return &metadataFile{
		Version:    metadataVersion,
		CreatedAt:  now,
		Posts:      map[string]StoredPost{},
		Keywords:   map[string][]string{},
		Categories: map[string][]string{},
	}
}
