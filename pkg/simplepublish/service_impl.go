package simplepublish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/simplepub/simple-publish/pkg/simplepublish/blobkey"
	"github.com/simplepub/simple-publish/pkg/simplepublish/httprange"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	logger     *slog.Logger
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithLogger sets the logger used for non-critical side effects (best-effort
// blob cleanup). Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Used by tests to pin key timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// Post operations

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	summary := strings.TrimSpace(req.Summary)

	// Fail fast: all validation happens before any blob or metadata write.
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if summary == "" {
		return nil, &ValidationError{Field: "summary", Reason: "must not be empty"}
	}
	if req.PDF == nil {
		return nil, ErrPDFRequired
	}
	if req.PDF.Size > MaxPDFSize {
		return nil, &FileTooLargeError{Field: "pdf", Size: req.PDF.Size, Limit: MaxPDFSize}
	}
	if req.Cover != nil && req.Cover.Size > MaxCoverSize {
		return nil, &FileTooLargeError{Field: "cover", Size: req.Cover.Size, Limit: MaxCoverSize}
	}

	now := s.now().UTC()

	source := req.Slug
	if strings.TrimSpace(source) == "" {
		source = title
	}
	slug := Slugify(source)
	if slug == "" {
		// All-punctuation input still needs an identifier.
		slug = strconv.FormatInt(now.UnixMilli(), 10)
	}

	// Blobs first, row second: the row must never point at bytes that are
	// not durably stored.
	pdfKey := blobkey.Derive(blobkey.KindPDF, slug, now, "")
	if err := s.blobStore.Upload(ctx, req.PDF.Reader, UploadParams{
		ObjectKey: pdfKey,
		MimeType:  "application/pdf",
	}); err != nil {
		return nil, &StorageError{Key: pdfKey, Op: "upload", Err: err}
	}

	coverKey := ""
	if req.Cover != nil {
		coverKey = blobkey.Derive(blobkey.KindCover, slug, now, req.Cover.ContentType)
		if err := s.blobStore.Upload(ctx, req.Cover.Reader, UploadParams{
			ObjectKey: coverKey,
			MimeType:  coverContentType(req.Cover),
		}); err != nil {
			return nil, &StorageError{Key: coverKey, Op: "upload", Err: err}
		}
	}

	post := &Post{
		Slug:        slug,
		Title:       title,
		Summary:     summary,
		PDFKey:      pdfKey,
		CoverKey:    coverKey,
		IsPublished: true,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repository.CreatePost(ctx, post); err != nil {
		// A slug conflict here strands the blobs just written. Accepted
		// trade-off: an orphaned blob is harmless, a row without bytes is not.
		return nil, &PostError{Slug: slug, Op: "create", Err: err}
	}

	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, currentSlug string, req UpdatePostRequest) (*Post, error) {
	current, err := s.repository.GetPostBySlug(ctx, currentSlug)
	if err != nil {
		return nil, &PostError{Slug: currentSlug, Op: "update", Err: err}
	}

	title := current.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
	}
	summary := current.Summary
	if req.Summary != nil {
		summary = strings.TrimSpace(*req.Summary)
		if summary == "" {
			return nil, &ValidationError{Field: "summary", Reason: "must not be empty"}
		}
	}
	if req.PDF != nil && req.PDF.Size > MaxPDFSize {
		return nil, &FileTooLargeError{Field: "pdf", Size: req.PDF.Size, Limit: MaxPDFSize}
	}
	if req.Cover != nil && req.Cover.Size > MaxCoverSize {
		return nil, &FileTooLargeError{Field: "cover", Size: req.Cover.Size, Limit: MaxCoverSize}
	}

	newSlug := current.Slug
	if req.Slug != nil {
		// A slug that normalizes to nothing keeps the current one.
		if normalized := Slugify(*req.Slug); normalized != "" {
			newSlug = normalized
		}
	}

	if newSlug != currentSlug {
		if _, err := s.repository.GetPostBySlug(ctx, newSlug); err == nil {
			return nil, &PostError{Slug: newSlug, Op: "update", Err: ErrSlugConflict}
		} else if !isNotFound(err) {
			return nil, &PostError{Slug: newSlug, Op: "update", Err: err}
		}
	}

	now := s.now().UTC()

	// Replacement blobs are written before the row moves, so the row always
	// references bytes that exist. New keys go under the new slug.
	pdfKey := current.PDFKey
	if req.PDF != nil {
		pdfKey = blobkey.Derive(blobkey.KindPDF, newSlug, now, "")
		if err := s.blobStore.Upload(ctx, req.PDF.Reader, UploadParams{
			ObjectKey: pdfKey,
			MimeType:  "application/pdf",
		}); err != nil {
			return nil, &StorageError{Key: pdfKey, Op: "upload", Err: err}
		}
	}

	coverKey := current.CoverKey
	if req.Cover != nil {
		coverKey = blobkey.Derive(blobkey.KindCover, newSlug, now, req.Cover.ContentType)
		if err := s.blobStore.Upload(ctx, req.Cover.Reader, UploadParams{
			ObjectKey: coverKey,
			MimeType:  coverContentType(req.Cover),
		}); err != nil {
			return nil, &StorageError{Key: coverKey, Op: "upload", Err: err}
		}
	}

	updated := &Post{
		ID:          current.ID,
		Slug:        newSlug,
		Title:       title,
		Summary:     summary,
		PDFKey:      pdfKey,
		CoverKey:    coverKey,
		IsPublished: current.IsPublished,
		PublishedAt: current.PublishedAt,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   now,
	}

	if err := s.repository.UpdatePost(ctx, currentSlug, updated); err != nil {
		return nil, &PostError{Slug: currentSlug, Op: "update", Err: err}
	}

	// The row points elsewhere now; stale blobs are garbage, not state.
	if pdfKey != current.PDFKey && current.PDFKey != "" {
		s.cleanupBlob(ctx, current.PDFKey)
	}
	if coverKey != current.CoverKey && current.CoverKey != "" {
		s.cleanupBlob(ctx, current.CoverKey)
	}

	return updated, nil
}

func (s *service) DeletePost(ctx context.Context, slug string) error {
	post, err := s.repository.GetPostBySlug(ctx, slug)
	if err != nil {
		return &PostError{Slug: slug, Op: "delete", Err: err}
	}

	if err := s.repository.DeletePost(ctx, slug); err != nil {
		return &PostError{Slug: slug, Op: "delete", Err: err}
	}

	// The row is gone, which is the authoritative "deleted" state; blob
	// removal is best-effort.
	if post.PDFKey != "" {
		s.cleanupBlob(ctx, post.PDFKey)
	}
	if post.CoverKey != "" {
		s.cleanupBlob(ctx, post.CoverKey)
	}

	return nil
}

// Read operations

func (s *service) GetPost(ctx context.Context, slug string) (*Post, error) {
	return s.repository.GetPublishedPostBySlug(ctx, slug)
}

func (s *service) ListPosts(ctx context.Context) ([]*Post, error) {
	return s.repository.ListPublishedPosts(ctx)
}

func (s *service) GetPostAny(ctx context.Context, slug string) (*Post, error) {
	return s.repository.GetPostBySlug(ctx, slug)
}

func (s *service) ListAllPosts(ctx context.Context) ([]*Post, error) {
	return s.repository.ListAllPosts(ctx)
}

// Blob delivery

func (s *service) OpenPDF(ctx context.Context, slug string, rng *httprange.Spec) (*BlobContent, error) {
	post, err := s.repository.GetPublishedPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.PDFKey == "" {
		return nil, ErrPostNotFound
	}

	meta, err := s.blobStore.GetObjectMeta(ctx, post.PDFKey)
	if err != nil {
		return nil, &StorageError{Key: post.PDFKey, Op: "head", Err: err}
	}

	if rng != nil {
		window, ok := rng.Resolve(meta.Size)
		if !ok {
			return nil, &RangeNotSatisfiableError{Size: meta.Size}
		}
		body, err := s.blobStore.DownloadRange(ctx, post.PDFKey, window.Start, window.Length())
		if err != nil {
			return nil, &StorageError{Key: post.PDFKey, Op: "download_range", Err: err}
		}
		return &BlobContent{
			Body:        body,
			Size:        meta.Size,
			ContentType: "application/pdf",
			Range:       &window,
		}, nil
	}

	body, err := s.blobStore.Download(ctx, post.PDFKey)
	if err != nil {
		return nil, &StorageError{Key: post.PDFKey, Op: "download", Err: err}
	}
	return &BlobContent{
		Body:        body,
		Size:        meta.Size,
		ContentType: "application/pdf",
	}, nil
}

func (s *service) OpenCover(ctx context.Context, slug string) (*BlobContent, error) {
	post, err := s.repository.GetPublishedPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.CoverKey == "" {
		return nil, ErrNoCover
	}

	meta, err := s.blobStore.GetObjectMeta(ctx, post.CoverKey)
	if err != nil {
		return nil, &StorageError{Key: post.CoverKey, Op: "head", Err: err}
	}

	body, err := s.blobStore.Download(ctx, post.CoverKey)
	if err != nil {
		return nil, &StorageError{Key: post.CoverKey, Op: "download", Err: err}
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &BlobContent{
		Body:        body,
		Size:        meta.Size,
		ContentType: contentType,
	}, nil
}

// Helper methods

// cleanupBlob deletes a stale blob. Failures are logged and swallowed: the
// metadata operation that made the blob stale has already succeeded, and its
// outcome must not change.
func (s *service) cleanupBlob(ctx context.Context, key string) {
	if err := s.blobStore.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete stale blob", "key", key, "error", err)
	}
}

func coverContentType(upload *FileUpload) string {
	if upload.ContentType != "" {
		return upload.ContentType
	}
	return "image/jpeg"
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound)
}
