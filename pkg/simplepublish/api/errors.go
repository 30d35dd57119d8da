package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/simplepub/simple-publish/pkg/simplepublish"
)

// ErrorResponse is the JSON body for every error status. Error is a stable
// string suitable for direct display; Detail carries a best-effort diagnostic
// and never a stack trace.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError maps domain errors onto HTTP statuses. Range errors are not
// handled here; the PDF handler turns them into a 416 with the required
// Content-Range header.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *simplepublish.ValidationError
	var tooLargeErr *simplepublish.FileTooLargeError

	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, r, http.StatusBadRequest, validationErr.Error(), "")
	case errors.Is(err, simplepublish.ErrPDFRequired):
		writeJSONError(w, r, http.StatusBadRequest, "PDF required", "")
	case errors.As(err, &tooLargeErr):
		writeJSONError(w, r, http.StatusBadRequest, tooLargeErr.Error(), "")
	case errors.Is(err, simplepublish.ErrNoCover):
		writeJSONError(w, r, http.StatusNotFound, "No cover", "")
	case errors.Is(err, simplepublish.ErrPostNotFound):
		writeJSONError(w, r, http.StatusNotFound, "Not found", "")
	case errors.Is(err, simplepublish.ErrObjectNotFound):
		writeJSONError(w, r, http.StatusNotFound, "File missing", "")
	case errors.Is(err, simplepublish.ErrSlugConflict):
		writeJSONError(w, r, http.StatusConflict, "Slug already exists", "")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, r, http.StatusInternalServerError, "Server error", err.Error())
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg, Detail: detail})
}

// methodNotAllowed returns a handler for chi's MethodNotAllowed hook that
// advertises the route's supported methods.
func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeJSONError(w, r, http.StatusMethodNotAllowed, "Method not allowed", "")
	}
}
