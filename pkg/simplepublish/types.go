package simplepublish

import (
	"io"
	"time"

	"github.com/simplepub/simple-publish/pkg/simplepublish/httprange"
)

// Upload size limits.
const (
	MaxPDFSize   = 100 << 20 // 100 MiB, boundary inclusive
	MaxCoverSize = 10 << 20  // 10 MiB, boundary inclusive
)

// Post is the sole persisted entity: one published document with its blob
// references. Slug is the primary external identifier.
type Post struct {
	ID          int64     `json:"-"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	PDFKey      string    `json:"pdf_key,omitempty"`
	CoverKey    string    `json:"cover_key,omitempty"`
	IsPublished bool      `json:"is_published"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileUpload is an inbound file: a byte stream plus the declared size and
// content type from the multipart part. Size is validated against the field
// limit before the stream is read.
type FileUpload struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

// BlobContent is an open blob stream plus the metadata needed to serve it
// over HTTP. Size is always the total object size; Range, when non-nil, is
// the resolved byte window the Body covers.
type BlobContent struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	Range       *httprange.Range
}
