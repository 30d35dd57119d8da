package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/simplepub/simple-publish/pkg/simplepublish"
	"github.com/simplepub/simple-publish/pkg/simplepublish/httprange"
)

// fileCacheControl is sent with every PDF and cover response.
const fileCacheControl = "public, max-age=3600"

// PublicHandler serves the unauthenticated read API: published post
// listings and the PDF and cover files behind them.
type PublicHandler struct {
	service simplepublish.Service
	logger  *slog.Logger
}

// NewPublicHandler creates a handler for the public read endpoints.
func NewPublicHandler(service simplepublish.Service, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{service: service, logger: logger}
}

// Routes returns the router for the public endpoints.
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(methodNotAllowed(http.MethodGet))

	r.Get("/", h.ListPosts)
	r.Get("/{slug}", h.GetPost)
	r.Get("/{slug}/pdf", h.GetPDF)
	r.Get("/{slug}/cover", h.GetCover)

	return r
}

// postSummary is the public listing row. Internal fields such as the PDF
// object key are not exposed here.
type postSummary struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	CoverKey    string    `json:"cover_key,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// postDetail is the public single-post view.
type postDetail struct {
	postSummary
	PDFKey string `json:"pdf_key"`
}

func toSummary(post *simplepublish.Post) postSummary {
	return postSummary{
		Slug:        post.Slug,
		Title:       post.Title,
		Summary:     post.Summary,
		CoverKey:    post.CoverKey,
		PublishedAt: post.PublishedAt,
	}
}

// ListPosts returns all published posts, newest first.
func (h *PublicHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	summaries := make([]postSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, toSummary(post))
	}

	render.JSON(w, r, summaries)
}

// GetPost returns a single published post by slug.
func (h *PublicHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, postDetail{postSummary: toSummary(post), PDFKey: post.PDFKey})
}

// GetPDF streams the post's PDF, honoring single-part byte ranges. A
// malformed Range header degrades to a full 200 response; an unsatisfiable
// one yields 416 with the total size in Content-Range.
func (h *PublicHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	spec := httprange.Parse(r.Header.Get("Range"))

	content, err := h.service.OpenPDF(r.Context(), slug, spec)
	if err != nil {
		var rangeErr *simplepublish.RangeNotSatisfiableError
		if errors.As(err, &rangeErr) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", rangeErr.Size))
			w.Header().Set("Accept-Ranges", "bytes")
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		writeError(w, r, err)
		return
	}
	defer content.Body.Close()

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", slug+".pdf"))
	w.Header().Set("Cache-Control", fileCacheControl)
	w.Header().Set("Accept-Ranges", "bytes")

	if content.Range != nil {
		w.Header().Set("Content-Range",
			fmt.Sprintf("bytes %d-%d/%d", content.Range.Start, content.Range.End, content.Size))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", content.Range.Length()))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", content.Size))
	}

	if _, err := io.Copy(w, content.Body); err != nil {
		h.logger.Warn("pdf stream interrupted", "slug", slug, "error", err)
	}
}

// GetCover streams the post's cover image in full.
func (h *PublicHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	content, err := h.service.OpenCover(r.Context(), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer content.Body.Close()

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", content.Size))
	w.Header().Set("Cache-Control", fileCacheControl)

	if _, err := io.Copy(w, content.Body); err != nil {
		h.logger.Warn("cover stream interrupted", "slug", slug, "error", err)
	}
}
