package simplepublish

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload writes the reader's content under params.ObjectKey, overwriting
	// any existing object
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens the full object
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// DownloadRange opens exactly the byte window [offset, offset+length)
	DownloadRange(ctx context.Context, objectKey string, offset, length int64) (io.ReadCloser, error)

	// GetObjectMeta retrieves size and content type for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// Delete deletes an object
	Delete(ctx context.Context, objectKey string) error
}

// Repository defines the interface for post metadata persistence.
//
// Implementations map their store's uniqueness violation to ErrSlugConflict
// and their no-rows condition to ErrPostNotFound; the store's own unique
// constraint is the only serialization point for concurrent slug claims.
type Repository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error)
	// UpdatePost rewrites the row currently identified by currentSlug,
	// including a possible slug rename carried in post.Slug.
	UpdatePost(ctx context.Context, currentSlug string, post *Post) error
	DeletePost(ctx context.Context, slug string) error
	ListPublishedPosts(ctx context.Context) ([]*Post, error)
	ListAllPosts(ctx context.Context) ([]*Post, error)
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
