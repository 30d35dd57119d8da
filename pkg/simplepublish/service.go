package simplepublish

import (
	"context"

	"github.com/simplepub/simple-publish/pkg/simplepublish/httprange"
)

// Service defines the main interface for the simple-publish library
type Service interface {
	// Post operations
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, currentSlug string, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, slug string) error

	// Read operations (published posts only)
	GetPost(ctx context.Context, slug string) (*Post, error)
	ListPosts(ctx context.Context) ([]*Post, error)

	// Admin read operations (include unpublished rows)
	GetPostAny(ctx context.Context, slug string) (*Post, error)
	ListAllPosts(ctx context.Context) ([]*Post, error)

	// Blob delivery. OpenPDF honors an optional byte range; a range that
	// cannot be satisfied yields *RangeNotSatisfiableError carrying the
	// object size. OpenCover always serves the whole object.
	OpenPDF(ctx context.Context, slug string, rng *httprange.Spec) (*BlobContent, error)
	OpenCover(ctx context.Context, slug string) (*BlobContent, error)
}
