// Package postgres provides a PostgreSQL implementation of
// simplepublish.Repository using pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/simplepub/simple-publish/pkg/simplepublish"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplepublish.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) simplepublish.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simplepublish.Repository {
	return &Repository{db: pool}
}

const selectColumns = `SELECT id, slug, title, summary, cover_key, pdf_key, is_published, published_at, created_at, updated_at`

func (r *Repository) CreatePost(ctx context.Context, post *simplepublish.Post) error {
	query := `
		INSERT INTO posts (slug, title, summary, cover_key, pdf_key, is_published, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		post.Slug, post.Title, post.Summary, post.CoverKey, post.PDFKey,
		post.IsPublished, post.PublishedAt, post.CreatedAt, post.UpdatedAt).Scan(&post.ID)
	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*simplepublish.Post, error) {
	row := r.db.QueryRow(ctx, selectColumns+` FROM posts WHERE slug = $1`, slug)
	return scanPost(row)
}

func (r *Repository) GetPublishedPostBySlug(ctx context.Context, slug string) (*simplepublish.Post, error) {
	row := r.db.QueryRow(ctx, selectColumns+` FROM posts WHERE slug = $1 AND is_published`, slug)
	return scanPost(row)
}

func (r *Repository) UpdatePost(ctx context.Context, currentSlug string, post *simplepublish.Post) error {
	query := `
		UPDATE posts
		   SET slug = $1, title = $2, summary = $3, cover_key = NULLIF($4, ''),
		       pdf_key = $5, is_published = $6, updated_at = $7
		 WHERE slug = $8`

	tag, err := r.db.Exec(ctx, query,
		post.Slug, post.Title, post.Summary, post.CoverKey,
		post.PDFKey, post.IsPublished, post.UpdatedAt, currentSlug)
	if err != nil {
		return mapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublish.ErrPostNotFound
	}

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return simplepublish.ErrPostNotFound
	}

	return nil
}

func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*simplepublish.Post, error) {
	return r.list(ctx, selectColumns+` FROM posts WHERE is_published ORDER BY published_at DESC, id DESC`)
}

func (r *Repository) ListAllPosts(ctx context.Context) ([]*simplepublish.Post, error) {
	return r.list(ctx, selectColumns+` FROM posts ORDER BY published_at DESC, id DESC`)
}

func (r *Repository) list(ctx context.Context, query string) ([]*simplepublish.Post, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*simplepublish.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*simplepublish.Post, error) {
	var post simplepublish.Post
	var coverKey *string

	err := row.Scan(&post.ID, &post.Slug, &post.Title, &post.Summary, &coverKey,
		&post.PDFKey, &post.IsPublished, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublish.ErrPostNotFound
		}
		return nil, err
	}

	if coverKey != nil {
		post.CoverKey = *coverKey
	}
	return &post, nil
}

// mapPostgresError translates pgx errors into domain sentinels.
func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return simplepublish.ErrSlugConflict
	}
	return err
}
