// Package sqlite provides a SQLite implementation of
// simplepublish.Repository backed by the modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    summary TEXT NOT NULL,
    cover_key TEXT,
    pdf_key TEXT NOT NULL,
    is_published INTEGER NOT NULL DEFAULT 1,
    published_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Repository implements simplepublish.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema setup. The caller should call Close when
// the repository is no longer needed.
func New(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets readers proceed during writes; the busy timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) CreatePost(ctx context.Context, post *simplepublish.Post) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (slug, title, summary, cover_key, pdf_key, is_published, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Slug, post.Title, post.Summary, nullableKey(post.CoverKey), post.PDFKey,
		boolToInt(post.IsPublished), post.PublishedAt, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return mapSQLiteError(err)
	}

	if id, err := res.LastInsertId(); err == nil {
		post.ID = id
	}
	return nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*simplepublish.Post, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

func (r *Repository) GetPublishedPostBySlug(ctx context.Context, slug string) (*simplepublish.Post, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` FROM posts WHERE slug = ? AND is_published = 1`, slug)
	return scanPost(row)
}

func (r *Repository) UpdatePost(ctx context.Context, currentSlug string, post *simplepublish.Post) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts
		   SET slug = ?, title = ?, summary = ?, cover_key = ?, pdf_key = ?, is_published = ?, updated_at = ?
		 WHERE slug = ?`,
		post.Slug, post.Title, post.Summary, nullableKey(post.CoverKey), post.PDFKey,
		boolToInt(post.IsPublished), post.UpdatedAt, currentSlug)
	if err != nil {
		return mapSQLiteError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return simplepublish.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = ?`, slug)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return simplepublish.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*simplepublish.Post, error) {
	return r.list(ctx, selectColumns+` FROM posts WHERE is_published = 1 ORDER BY published_at DESC, id DESC`)
}

func (r *Repository) ListAllPosts(ctx context.Context) ([]*simplepublish.Post, error) {
	return r.list(ctx, selectColumns+` FROM posts ORDER BY published_at DESC, id DESC`)
}

func (r *Repository) list(ctx context.Context, query string) ([]*simplepublish.Post, error) {
	rows, err := r.db.QueryContext(ctx, query)
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

const selectColumns = `SELECT id, slug, title, summary, cover_key, pdf_key, is_published, published_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*simplepublish.Post, error) {
	var post simplepublish.Post
	var coverKey sql.NullString
	var published int

	err := row.Scan(&post.ID, &post.Slug, &post.Title, &post.Summary, &coverKey,
		&post.PDFKey, &published, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, simplepublish.ErrPostNotFound
		}
		return nil, err
	}

	post.CoverKey = coverKey.String
	post.IsPublished = published == 1
	return &post, nil
}

// mapSQLiteError translates driver errors into domain sentinels. The modernc
// driver reports constraint violations as plain error strings.
func mapSQLiteError(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return simplepublish.ErrSlugConflict
	}
	return err
}

func nullableKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
