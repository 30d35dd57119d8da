package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
	"github.com/simplepub/simple-publish/pkg/simplepublish/storage/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBackend(t *testing.T) (simplepublish.BlobStore, string) {
	baseDir := t.TempDir()
	store, err := fs.New(fs.Config{BaseDir: baseDir})
	require.NoError(t, err)
	return store, baseDir
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	store, baseDir := setupBackend(t)

	err := store.Upload(ctx, strings.NewReader("file content"), simplepublish.UploadParams{
		ObjectKey: "pdf/1-post.pdf",
	})
	require.NoError(t, err)

	// Keys with slashes become nested directories.
	_, err = os.Stat(filepath.Join(baseDir, "pdf", "1-post.pdf"))
	assert.NoError(t, err)

	body, err := store.Download(ctx, "pdf/1-post.pdf")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "file content", string(data))

	_, err = store.Download(ctx, "missing")
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}

func TestDownloadRange(t *testing.T) {
	ctx := context.Background()
	store, _ := setupBackend(t)

	err := store.Upload(ctx, strings.NewReader("0123456789"), simplepublish.UploadParams{ObjectKey: "key"})
	require.NoError(t, err)

	body, err := store.DownloadRange(ctx, "key", 3, 4)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(data))

	_, err = store.DownloadRange(ctx, "missing", 0, 1)
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}

func TestGetObjectMeta(t *testing.T) {
	ctx := context.Background()
	store, _ := setupBackend(t)

	content := "%PDF-1.4 not really a pdf but sized"
	err := store.Upload(ctx, strings.NewReader(content), simplepublish.UploadParams{ObjectKey: "doc"})
	require.NoError(t, err)

	meta, err := store.GetObjectMeta(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.NotEmpty(t, meta.ContentType)

	_, err = store.GetObjectMeta(ctx, "missing")
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}

func TestDeleteCleansEmptyDirectories(t *testing.T) {
	ctx := context.Background()
	store, baseDir := setupBackend(t)

	err := store.Upload(ctx, strings.NewReader("x"), simplepublish.UploadParams{ObjectKey: "cover/9-post.jpg"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "cover/9-post.jpg"))

	_, err = os.Stat(filepath.Join(baseDir, "cover"))
	assert.True(t, os.IsNotExist(err))

	err = store.Delete(ctx, "cover/9-post.jpg")
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
}
