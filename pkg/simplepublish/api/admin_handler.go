package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/simplepub/simple-publish/pkg/simplepublish"
)

// multipartMemoryLimit is the in-memory threshold for multipart parsing;
// larger file parts spill to temporary files.
const multipartMemoryLimit = 32 << 20

// AdminHandler serves the authenticated write API. Every route requires the
// shared admin token.
type AdminHandler struct {
	service simplepublish.Service
	token   string
	logger  *slog.Logger
}

// NewAdminHandler creates a handler for the admin endpoints.
func NewAdminHandler(service simplepublish.Service, token string, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{service: service, token: token, logger: logger}
}

// Routes returns the router for the admin endpoints.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequireAdminToken(h.token))
	r.MethodNotAllowed(methodNotAllowed("GET, POST"))

	r.Get("/", h.ListPosts)
	r.Post("/", h.CreatePost)

	r.Route("/{slug}", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowed("GET, PUT, DELETE"))
		r.Get("/", h.GetPost)
		r.Put("/", h.UpdatePost)
		r.Delete("/", h.DeletePost)
	})

	return r
}

// adminResult is the response body for successful mutations.
type adminResult struct {
	OK      bool   `json:"ok"`
	Slug    string `json:"slug,omitempty"`
	Message string `json:"message"`
}

// ListPosts returns every post, published or not, with full fields.
func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListAllPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []*simplepublish.Post{}
	}

	render.JSON(w, r, posts)
}

// GetPost returns a single post by slug regardless of publication state.
func (h *AdminHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostAny(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

// CreatePost accepts a multipart form with title, summary, an optional slug
// override, a required pdf file part, and an optional cover part.
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := simplepublish.CreatePostRequest{
		Title:   r.FormValue("title"),
		Summary: r.FormValue("summary"),
		Slug:    r.FormValue("slug"),
	}

	pdf, err := fileFromForm(r, "pdf")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "Invalid pdf upload", err.Error())
		return
	}
	if pdf != nil {
		defer pdf.close()
		req.PDF = &pdf.FileUpload
	}

	cover, err := fileFromForm(r, "cover")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "Invalid cover upload", err.Error())
		return
	}
	if cover != nil {
		defer cover.close()
		req.Cover = &cover.FileUpload
	}

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.Info("post created", "slug", post.Slug)
	render.JSON(w, r, adminResult{OK: true, Slug: post.Slug, Message: "Created"})
}

// UpdatePost accepts the same multipart form as CreatePost, but every part
// is optional. Absent fields keep their stored values.
func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	var req simplepublish.UpdatePostRequest
	if v, ok := formValue(r, "title"); ok {
		req.Title = &v
	}
	if v, ok := formValue(r, "summary"); ok {
		req.Summary = &v
	}
	if v, ok := formValue(r, "slug"); ok {
		req.Slug = &v
	}

	pdf, err := fileFromForm(r, "pdf")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "Invalid pdf upload", err.Error())
		return
	}
	if pdf != nil {
		defer pdf.close()
		req.PDF = &pdf.FileUpload
	}

	cover, err := fileFromForm(r, "cover")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "Invalid cover upload", err.Error())
		return
	}
	if cover != nil {
		defer cover.close()
		req.Cover = &cover.FileUpload
	}

	post, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.Info("post updated", "slug", post.Slug)
	render.JSON(w, r, adminResult{OK: true, Slug: post.Slug, Message: "Updated"})
}

// DeletePost removes the post row and its blobs.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := h.service.DeletePost(r.Context(), slug); err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.Info("post deleted", "slug", slug)
	render.JSON(w, r, adminResult{OK: true, Slug: slug, Message: "Deleted"})
}

// formFile bundles an upload with the cleanup for its open part.
type formFile struct {
	simplepublish.FileUpload
	close func() error
}

// fileFromForm opens the named file part. A missing part returns nil with no
// error so callers can treat files as optional.
func fileFromForm(r *http.Request, field string) (*formFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}

	header := r.MultipartForm.File[field][0]
	file, err := header.Open()
	if err != nil {
		return nil, err
	}

	return &formFile{
		FileUpload: simplepublish.FileUpload{
			Reader:      file,
			Size:        header.Size,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		},
		close: file.Close,
	}, nil
}

// formValue reports whether the field was present in the form at all,
// distinguishing "absent" from "sent empty".
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
