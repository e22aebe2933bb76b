// internal/api/http/assets.go
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-blog/internal/blog"
	"github.com/mind-engage/mindengage-blog/internal/storage"
)

// UploadHandler stores the "file" part under its original name.
func UploadHandler(svc *blog.Service, maxMemory int64, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			badRequest(w, formError(err))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		f, hdr, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			badRequest(w, &ValidationError{Field: "file", Reason: "is required"})
			return
		}
		if err != nil {
			badRequest(w, formError(err))
			return
		}
		defer f.Close()

		addr, err := svc.Upload(r.Context(), blog.Media{
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Body:        f,
		})
		if err != nil {
			upstreamFailure(w, r, log, "Failed to upload file", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "File uploaded successfully!",
			"url":     addr,
		})
	}
}

// FileRedirectHandler sends the client to the blob's public address.
func FileRedirectHandler(bs storage.BlobStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := bs.URL(chi.URLParam(r, "filename"))
		if err != nil {
			upstreamFailure(w, r, log, "Failed to fetch file", err)
			return
		}
		http.Redirect(w, r, addr, http.StatusFound)
	}
}
