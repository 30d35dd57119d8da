package blobkey_test

import (
	"testing"
	"time"

	"github.com/simplepub/simple-publish/pkg/simplepublish/blobkey"
	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	tests := []struct {
		name        string
		kind        blobkey.Kind
		slug        string
		contentType string
		expected    string
	}{
		{"pdf ignores content type", blobkey.KindPDF, "my-post", "application/octet-stream", "pdf/1700000000000-my-post.pdf"},
		{"cover from png", blobkey.KindCover, "my-post", "image/png", "cover/1700000000000-my-post.png"},
		{"cover from webp", blobkey.KindCover, "my-post", "image/webp", "cover/1700000000000-my-post.webp"},
		{"cover with parameters", blobkey.KindCover, "my-post", "image/svg+xml; charset=utf-8", "cover/1700000000000-my-post.svg+xml"},
		{"cover without content type", blobkey.KindCover, "my-post", "", "cover/1700000000000-my-post.jpg"},
		{"cover with bare type", blobkey.KindCover, "my-post", "image/", "cover/1700000000000-my-post.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, blobkey.Derive(tt.kind, tt.slug, at, tt.contentType))
		})
	}
}

func TestDeriveDistinctOverTime(t *testing.T) {
	first := blobkey.Derive(blobkey.KindPDF, "post", time.UnixMilli(1000), "")
	second := blobkey.Derive(blobkey.KindPDF, "post", time.UnixMilli(1001), "")
	assert.NotEqual(t, first, second)
}
