package article

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type Repository interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context) ([]Run, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	Complete(ctx context.Context, run *Run) error
	ExistsPendingKeyword(ctx context.Context, keyword string) (bool, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, run *Run) error {
	query := `INSERT INTO article_runs (keyword, lsi_keywords, longtail_keywords, categories, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		run.Keyword, pq.Array(run.LSIKeywords), pq.Array(run.LongtailKeywords), pq.Array(run.Categories), run.Status,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Run, error) {
	run := &Run{}
	query := `SELECT id, keyword, lsi_keywords, longtail_keywords, categories, title, status,
		post_id, post_url, internal_links, external_links, error, created_at, updated_at
		FROM article_runs WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Keyword, pq.Array(&run.LSIKeywords), pq.Array(&run.LongtailKeywords), pq.Array(&run.Categories),
		&run.Title, &run.Status, &run.PostID, &run.PostURL, &run.InternalLinks, &run.ExternalLinks,
		&run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Run, error) {
	query := `SELECT id, keyword, lsi_keywords, longtail_keywords, categories, title, status,
		post_id, post_url, internal_links, external_links, error, created_at, updated_at
		FROM article_runs ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.Keyword, pq.Array(&run.LSIKeywords), pq.Array(&run.LongtailKeywords), pq.Array(&run.Categories),
			&run.Title, &run.Status, &run.PostID, &run.PostURL, &run.InternalLinks, &run.ExternalLinks,
			&run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	query := `UPDATE article_runs SET status = $2, error = $3, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, errMsg)
	return err
}

// Complete records the final state of a successful run in one statement.
func (r *PostgresRepo) Complete(ctx context.Context, run *Run) error {
	query := `UPDATE article_runs SET status = $2, title = $3, post_id = $4, post_url = $5,
		internal_links = $6, external_links = $7, error = '', updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, StatusCompleted, run.Title, run.PostID, run.PostURL, run.InternalLinks, run.ExternalLinks)
	return err
}

func (r *PostgresRepo) ExistsPendingKeyword(ctx context.Context, keyword string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM article_runs WHERE keyword = $1 AND status IN ($2, $3))`
	err := r.db.QueryRowContext(ctx, query, keyword, StatusPending, StatusProcessing).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article_runs`).Scan(&count)
	return count, err
}

func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM article_runs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
