// Package memory provides an in-memory implementation of the
// simplepublish.BlobStore interface.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the simplepublish.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() simplepublish.BlobStore {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Upload stores the reader's content under params.ObjectKey
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params simplepublish.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	contentType := params.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[params.ObjectKey] = object{
		data:        data,
		contentType: contentType,
		updatedAt:   time.Now().UTC(),
	}
	return nil
}

// Download opens the full object
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, simplepublish.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// DownloadRange opens the byte window [offset, offset+length)
func (b *Backend) DownloadRange(ctx context.Context, objectKey string, offset, length int64) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, simplepublish.ErrObjectNotFound
	}

	end := offset + length
	if offset < 0 || offset > int64(len(obj.data)) {
		return nil, simplepublish.ErrObjectNotFound
	}
	if end > int64(len(obj.data)) {
		end = int64(len(obj.data))
	}

	return io.NopCloser(bytes.NewReader(obj.data[offset:end])), nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simplepublish.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, simplepublish.ErrObjectNotFound
	}

	return &simplepublish.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Delete deletes an object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return simplepublish.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	return nil
}
