// Package blobkey derives storage keys for uploaded blobs.
//
// Keys have the shape "{kind}/{unixMillis}-{slug}.{ext}". The millisecond
// timestamp guarantees that a replacement upload for the same slug never
// collides with the key it replaces, which is what allows the
// write-new-then-delete-old swap during updates.
package blobkey

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies a blob within the store's key namespace.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindCover Kind = "cover"
)

// DefaultCoverExt is used when a cover upload's content type is absent or
// unparsable.
const DefaultCoverExt = "jpg"

// Derive builds the storage key for a blob of the given kind. PDFs always get
// the "pdf" extension; for any other kind the extension comes from the
// declared content type's subtype. Pure, no failure modes.
func Derive(kind Kind, slug string, at time.Time, contentType string) string {
	ext := "pdf"
	if kind != KindPDF {
		ext = extFromContentType(contentType)
	}
	return fmt.Sprintf("%s/%d-%s.%s", kind, at.UnixMilli(), slug, ext)
}

// extFromContentType extracts the subtype of a media type ("image/png" →
// "png"), defaulting to jpg.
func extFromContentType(contentType string) string {
	_, sub, found := strings.Cut(contentType, "/")
	if !found || sub == "" {
		return DefaultCoverExt
	}
	// Strip any parameters ("image/svg+xml; charset=utf-8").
	if i := strings.IndexAny(sub, "; "); i >= 0 {
		sub = sub[:i]
	}
	if sub == "" {
		return DefaultCoverExt
	}
	return sub
}
