// Package memory provides an in-memory implementation of
// simplepublish.Repository, primarily for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
)

// Repository implements simplepublish.Repository using in-memory maps
type Repository struct {
	mu     sync.RWMutex
	posts  map[string]*simplepublish.Post // keyed by slug
	nextID int64
}

// New creates a new in-memory repository
func New() simplepublish.Repository {
	return &Repository{
		posts:  make(map[string]*simplepublish.Post),
		nextID: 1,
	}
}

func (r *Repository) CreatePost(ctx context.Context, post *simplepublish.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.Slug]; exists {
		return simplepublish.ErrSlugConflict
	}

	post.ID = r.nextID
	r.nextID++

	stored := *post
	r.posts[post.Slug] = &stored
	return nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*simplepublish.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[slug]
	if !exists {
		return nil, simplepublish.ErrPostNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *Repository) GetPublishedPostBySlug(ctx context.Context, slug string) (*simplepublish.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[slug]
	if !exists || !post.IsPublished {
		return nil, simplepublish.ErrPostNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *Repository) UpdatePost(ctx context.Context, currentSlug string, post *simplepublish.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[currentSlug]; !exists {
		return simplepublish.ErrPostNotFound
	}
	if post.Slug != currentSlug {
		if _, exists := r.posts[post.Slug]; exists {
			return simplepublish.ErrSlugConflict
		}
		delete(r.posts, currentSlug)
	}

	stored := *post
	r.posts[post.Slug] = &stored
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[slug]; !exists {
		return simplepublish.ErrPostNotFound
	}
	delete(r.posts, slug)
	return nil
}

func (r *Repository) ListPublishedPosts(ctx context.Context) ([]*simplepublish.Post, error) {
	return r.list(true), nil
}

func (r *Repository) ListAllPosts(ctx context.Context) ([]*simplepublish.Post, error) {
	return r.list(false), nil
}

func (r *Repository) list(publishedOnly bool) []*simplepublish.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []*simplepublish.Post
	for _, post := range r.posts {
		if publishedOnly && !post.IsPublished {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}

	// published_at descending, insertion order as tiebreaker
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})

	return posts
}
