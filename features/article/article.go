package article

import (
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Run is one article-generation request tracked end to end: enqueued as
// pending, picked up by the pipeline worker, finished as completed or
// failed. The post id/url fields fill in once the generated article lands
// in the content catalog.
type Run struct {
	ID               string    `json:"id"`
	Keyword          string    `json:"keyword"`
	LSIKeywords      []string  `json:"lsi_keywords"`
	LongtailKeywords []string  `json:"longtail_keywords"`
	Categories       []string  `json:"categories"`
	Title            string    `json:"title"`
	Status           string    `json:"status"`
	PostID           string    `json:"post_id,omitempty"`
	PostURL          string    `json:"post_url,omitempty"`
	InternalLinks    int       `json:"internal_links"`
	ExternalLinks    int       `json:"external_links"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
