package simplepublish

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPostNotFound indicates no post exists for the requested slug
	ErrPostNotFound = errors.New("post not found")

	// ErrSlugConflict indicates the slug is already taken by another post
	ErrSlugConflict = errors.New("slug already exists")

	// ErrObjectNotFound indicates a stored blob was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrPDFRequired indicates the required PDF upload was absent
	ErrPDFRequired = errors.New("pdf file is required")

	// ErrNoCover indicates the post has no cover image
	ErrNoCover = errors.New("post has no cover")
)

// ValidationError reports a missing or empty required field. It is detected
// before any blob or metadata write occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FileTooLargeError reports an upload whose declared size exceeds the limit
// for its field. Checked before any network I/O.
type FileTooLargeError struct {
	Field string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s too large: %d bytes (max %d)", e.Field, e.Size, e.Limit)
}

// RangeNotSatisfiableError reports a byte range that cannot be served from an
// object of the given size. Size is carried so the caller can emit
// "Content-Range: bytes */<size>".
type RangeNotSatisfiableError struct {
	Size int64
}

func (e *RangeNotSatisfiableError) Error() string {
	return fmt.Sprintf("requested range not satisfiable (object size %d)", e.Size)
}

// PostError represents an error during a post operation
type PostError struct {
	Slug string
	Op   string
	Err  error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for %q: %v", e.Op, e.Slug, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// StorageError represents an error during a blob store operation
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
