package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
	"github.com/simplepub/simple-publish/pkg/simplepublish/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, store simplepublish.BlobStore, key, content, contentType string) {
	t.Helper()
	err := store.Upload(context.Background(), strings.NewReader(content), simplepublish.UploadParams{
		ObjectKey: key,
		MimeType:  contentType,
	})
	require.NoError(t, err)
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	upload(t, store, "pdf/1-post.pdf", "hello pdf", "application/pdf")

	body, err := store.Download(ctx, "pdf/1-post.pdf")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello pdf", string(data))

	_, err = store.Download(ctx, "missing")
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}

func TestDownloadRange(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	upload(t, store, "key", "0123456789", "application/pdf")

	t.Run("window inside object", func(t *testing.T) {
		body, err := store.DownloadRange(ctx, "key", 2, 4)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "2345", string(data))
	})

	t.Run("window clamped at end", func(t *testing.T) {
		body, err := store.DownloadRange(ctx, "key", 8, 100)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "89", string(data))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.DownloadRange(ctx, "missing", 0, 1)
		assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
	})
}

func TestGetObjectMeta(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	upload(t, store, "cover/1-post.png", "pngbytes", "image/png")

	meta, err := store.GetObjectMeta(ctx, "cover/1-post.png")
	require.NoError(t, err)
	assert.Equal(t, int64(len("pngbytes")), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)
	assert.False(t, meta.UpdatedAt.IsZero())

	_, err = store.GetObjectMeta(ctx, "missing")
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	upload(t, store, "key", "content", "")
	require.NoError(t, store.Delete(ctx, "key"))

	err := store.Delete(ctx, "key")
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}
