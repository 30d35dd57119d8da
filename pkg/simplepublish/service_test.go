package simplepublish_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
	"github.com/simplepub/simple-publish/pkg/simplepublish/httprange"
	memoryrepo "github.com/simplepub/simple-publish/pkg/simplepublish/repo/memory"
	memorystorage "github.com/simplepub/simple-publish/pkg/simplepublish/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simplepublish.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplepublish.Option{},
			expectError: true,
		},
		{
			name: "repository only should fail",
			options: []simplepublish.Option{
				simplepublish.WithRepository(memoryrepo.New()),
			},
			expectError: true,
		},
		{
			name: "repository and blob store should succeed",
			options: []simplepublish.Option{
				simplepublish.WithRepository(memoryrepo.New()),
				simplepublish.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplepublish.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

// testClock is a settable time source so blob keys are deterministic.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupTestService(t *testing.T) (simplepublish.Service, simplepublish.BlobStore, *testClock) {
	store := memorystorage.New()
	clock := &testClock{now: time.UnixMilli(1700000000000).UTC()}

	svc, err := simplepublish.New(
		simplepublish.WithRepository(memoryrepo.New()),
		simplepublish.WithBlobStore(store),
		simplepublish.WithClock(clock.Now),
	)
	require.NoError(t, err)

	return svc, store, clock
}

func pdfUpload(content string) *simplepublish.FileUpload {
	return &simplepublish.FileUpload{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
	}
}

func coverUpload(content, contentType string) *simplepublish.FileUpload {
	return &simplepublish.FileUpload{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		Filename:    "cover",
		ContentType: contentType,
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("slug derived from title", func(t *testing.T) {
		svc, store, _ := setupTestService(t)

		post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Hello, World!",
			Summary: "An inaugural post",
			PDF:     pdfUpload("%PDF-1.4 content"),
			Cover:   coverUpload("pngbytes", "image/png"),
		})
		require.NoError(t, err)

		assert.Equal(t, "hello-world", post.Slug)
		assert.Equal(t, "Hello, World!", post.Title)
		assert.True(t, post.IsPublished)
		assert.Equal(t, "pdf/1700000000000-hello-world.pdf", post.PDFKey)
		assert.Equal(t, "cover/1700000000000-hello-world.png", post.CoverKey)
		assert.False(t, post.PublishedAt.IsZero())

		meta, err := store.GetObjectMeta(ctx, post.PDFKey)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", meta.ContentType)
	})

	t.Run("explicit slug overrides title", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Quarterly Report",
			Summary: "Numbers",
			Slug:    "Q3 Special!",
			PDF:     pdfUpload("pdf"),
		})
		require.NoError(t, err)
		assert.Equal(t, "q3-special", post.Slug)
	})

	t.Run("unusable slug falls back to timestamp", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Valid Title",
			Summary: "Summary",
			Slug:    "!!!",
			PDF:     pdfUpload("pdf"),
		})
		require.NoError(t, err)
		assert.Equal(t, "1700000000000", post.Slug)
	})

	t.Run("cover is optional", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "No Cover",
			Summary: "Plain",
			PDF:     pdfUpload("pdf"),
		})
		require.NoError(t, err)
		assert.Empty(t, post.CoverKey)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		_, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "   ",
			Summary: "Summary",
			PDF:     pdfUpload("pdf"),
		})
		var validationErr *simplepublish.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "title", validationErr.Field)

		_, err = svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Title",
			Summary: "",
			PDF:     pdfUpload("pdf"),
		})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "summary", validationErr.Field)

		_, err = svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Title",
			Summary: "Summary",
		})
		assert.ErrorIs(t, err, simplepublish.ErrPDFRequired)
	})

	t.Run("size limits are boundary inclusive", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		atLimit := &simplepublish.FileUpload{
			Reader: strings.NewReader("tiny"),
			Size:   simplepublish.MaxPDFSize,
		}
		_, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "At Limit",
			Summary: "Exactly the cap",
			PDF:     atLimit,
		})
		assert.NoError(t, err)

		overLimit := &simplepublish.FileUpload{
			Reader: strings.NewReader("tiny"),
			Size:   simplepublish.MaxPDFSize + 1,
		}
		_, err = svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Over Limit",
			Summary: "One byte too many",
			PDF:     overLimit,
		})
		var tooLarge *simplepublish.FileTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, "pdf", tooLarge.Field)

		bigCover := &simplepublish.FileUpload{
			Reader: strings.NewReader("tiny"),
			Size:   simplepublish.MaxCoverSize + 1,
		}
		_, err = svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Big Cover",
			Summary: "Cover too big",
			PDF:     pdfUpload("pdf"),
			Cover:   bigCover,
		})
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, "cover", tooLarge.Field)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		_, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Same Title",
			Summary: "First",
			PDF:     pdfUpload("pdf"),
		})
		require.NoError(t, err)

		_, err = svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   "Same Title",
			Summary: "Second",
			PDF:     pdfUpload("pdf"),
		})
		assert.ErrorIs(t, err, simplepublish.ErrSlugConflict)
	})
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, svc simplepublish.Service, title string) *simplepublish.Post {
		post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   title,
			Summary: "Original summary",
			PDF:     pdfUpload("original pdf"),
			Cover:   coverUpload("original cover", "image/png"),
		})
		require.NoError(t, err)
		return post
	}

	t.Run("metadata only keeps blobs", func(t *testing.T) {
		svc, _, clock := setupTestService(t)
		post := create(t, svc, "First Post")
		clock.Advance(time.Second)

		newTitle := "Renamed Post"
		updated, err := svc.UpdatePost(ctx, post.Slug, simplepublish.UpdatePostRequest{
			Title: &newTitle,
		})
		require.NoError(t, err)

		assert.Equal(t, "Renamed Post", updated.Title)
		assert.Equal(t, post.Slug, updated.Slug)
		assert.Equal(t, post.PDFKey, updated.PDFKey)
		assert.Equal(t, post.CoverKey, updated.CoverKey)
		assert.Equal(t, post.PublishedAt, updated.PublishedAt)
		assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))
	})

	t.Run("new pdf swaps blob and removes old one", func(t *testing.T) {
		svc, store, clock := setupTestService(t)
		post := create(t, svc, "Swap Post")
		clock.Advance(time.Second)

		updated, err := svc.UpdatePost(ctx, post.Slug, simplepublish.UpdatePostRequest{
			PDF: pdfUpload("replacement pdf"),
		})
		require.NoError(t, err)

		assert.NotEqual(t, post.PDFKey, updated.PDFKey)

		_, err = store.GetObjectMeta(ctx, post.PDFKey)
		assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)

		meta, err := store.GetObjectMeta(ctx, updated.PDFKey)
		require.NoError(t, err)
		assert.Equal(t, int64(len("replacement pdf")), meta.Size)
	})

	t.Run("slug change without new files keeps keys", func(t *testing.T) {
		svc, _, clock := setupTestService(t)
		post := create(t, svc, "Movable Post")
		clock.Advance(time.Second)

		newSlug := "moved-post"
		updated, err := svc.UpdatePost(ctx, post.Slug, simplepublish.UpdatePostRequest{
			Slug: &newSlug,
		})
		require.NoError(t, err)

		assert.Equal(t, "moved-post", updated.Slug)
		assert.Equal(t, post.PDFKey, updated.PDFKey)

		_, err = svc.GetPost(ctx, "moved-post")
		assert.NoError(t, err)
		_, err = svc.GetPost(ctx, post.Slug)
		assert.ErrorIs(t, err, simplepublish.ErrPostNotFound)
	})

	t.Run("slug that normalizes empty keeps current", func(t *testing.T) {
		svc, _, _ := setupTestService(t)
		post := create(t, svc, "Sticky Slug")

		badSlug := "???"
		updated, err := svc.UpdatePost(ctx, post.Slug, simplepublish.UpdatePostRequest{
			Slug: &badSlug,
		})
		require.NoError(t, err)
		assert.Equal(t, post.Slug, updated.Slug)
	})

	t.Run("rename onto existing slug conflicts", func(t *testing.T) {
		svc, _, _ := setupTestService(t)
		create(t, svc, "Target Post")
		post := create(t, svc, "Source Post")

		taken := "target-post"
		_, err := svc.UpdatePost(ctx, post.Slug, simplepublish.UpdatePostRequest{
			Slug: &taken,
		})
		assert.ErrorIs(t, err, simplepublish.ErrSlugConflict)
	})

	t.Run("empty provided fields are rejected", func(t *testing.T) {
		svc, _, _ := setupTestService(t)
		post := create(t, svc, "Strict Post")

		empty := "  "
		_, err := svc.UpdatePost(ctx, post.Slug, simplepublish.UpdatePostRequest{
			Title: &empty,
		})
		var validationErr *simplepublish.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown slug", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		_, err := svc.UpdatePost(ctx, "nope", simplepublish.UpdatePostRequest{})
		assert.ErrorIs(t, err, simplepublish.ErrPostNotFound)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupTestService(t)

	post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
		Title:   "Doomed Post",
		Summary: "Soon gone",
		PDF:     pdfUpload("pdf"),
		Cover:   coverUpload("cover", "image/jpeg"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, post.Slug))

	_, err = svc.GetPost(ctx, post.Slug)
	assert.ErrorIs(t, err, simplepublish.ErrPostNotFound)

	_, err = store.GetObjectMeta(ctx, post.PDFKey)
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)
	_, err = store.GetObjectMeta(ctx, post.CoverKey)
	assert.ErrorIs(t, err, simplepublish.ErrObjectNotFound)

	err = svc.DeletePost(ctx, post.Slug)
	assert.ErrorIs(t, err, simplepublish.ErrPostNotFound)
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupTestService(t)

	for _, title := range []string{"Oldest", "Middle", "Newest"} {
		_, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
			Title:   title,
			Summary: "s",
			PDF:     pdfUpload("pdf"),
		})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "newest", posts[0].Slug)
	assert.Equal(t, "middle", posts[1].Slug)
	assert.Equal(t, "oldest", posts[2].Slug)
}

func TestOpenPDF(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	content := strings.Repeat("x", 1000)
	post, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
		Title:   "Ranged Post",
		Summary: "s",
		PDF:     pdfUpload(content),
	})
	require.NoError(t, err)

	t.Run("full read", func(t *testing.T) {
		blob, err := svc.OpenPDF(ctx, post.Slug, nil)
		require.NoError(t, err)
		defer blob.Body.Close()

		assert.Equal(t, int64(1000), blob.Size)
		assert.Equal(t, "application/pdf", blob.ContentType)
		assert.Nil(t, blob.Range)

		data, err := io.ReadAll(blob.Body)
		require.NoError(t, err)
		assert.Len(t, data, 1000)
	})

	t.Run("bounded range", func(t *testing.T) {
		blob, err := svc.OpenPDF(ctx, post.Slug, &httprange.Spec{Start: 0, End: 99, HasEnd: true})
		require.NoError(t, err)
		defer blob.Body.Close()

		require.NotNil(t, blob.Range)
		assert.Equal(t, int64(0), blob.Range.Start)
		assert.Equal(t, int64(99), blob.Range.End)
		assert.Equal(t, int64(1000), blob.Size)

		data, err := io.ReadAll(blob.Body)
		require.NoError(t, err)
		assert.Len(t, data, 100)
	})

	t.Run("open ended range", func(t *testing.T) {
		blob, err := svc.OpenPDF(ctx, post.Slug, &httprange.Spec{Start: 900})
		require.NoError(t, err)
		defer blob.Body.Close()

		require.NotNil(t, blob.Range)
		assert.Equal(t, int64(999), blob.Range.End)
	})

	t.Run("unsatisfiable range", func(t *testing.T) {
		_, err := svc.OpenPDF(ctx, post.Slug, &httprange.Spec{Start: 2000})
		var rangeErr *simplepublish.RangeNotSatisfiableError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, int64(1000), rangeErr.Size)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := svc.OpenPDF(ctx, "nope", nil)
		assert.True(t, errors.Is(err, simplepublish.ErrPostNotFound))
	})
}

func TestOpenCover(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	withCover, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
		Title:   "Covered",
		Summary: "s",
		PDF:     pdfUpload("pdf"),
		Cover:   coverUpload("cover bytes", "image/webp"),
	})
	require.NoError(t, err)

	withoutCover, err := svc.CreatePost(ctx, simplepublish.CreatePostRequest{
		Title:   "Bare",
		Summary: "s",
		PDF:     pdfUpload("pdf"),
	})
	require.NoError(t, err)

	t.Run("serves stored content type", func(t *testing.T) {
		blob, err := svc.OpenCover(ctx, withCover.Slug)
		require.NoError(t, err)
		defer blob.Body.Close()

		assert.Equal(t, "image/webp", blob.ContentType)
		assert.Equal(t, int64(len("cover bytes")), blob.Size)
	})

	t.Run("no cover", func(t *testing.T) {
		_, err := svc.OpenCover(ctx, withoutCover.Slug)
		assert.ErrorIs(t, err, simplepublish.ErrNoCover)
	})
}
