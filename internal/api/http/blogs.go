// internal/api/http/blogs.go
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	authmw "github.com/mind-engage/mindengage-blog/internal/auth/middleware"
	"github.com/mind-engage/mindengage-blog/internal/blog"
)

func ListBlogsHandler(svc *blog.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.List(r.Context())
		if err != nil {
			upstreamFailure(w, r, log, "Failed to fetch blogs", err)
			return
		}
		log.Debug("blogs fetched", "count", len(posts))
		writeJSON(w, http.StatusOK, posts)
	}
}

func GetBlogHandler(svc *blog.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		p, err := svc.Get(r.Context(), id)
		if errors.Is(err, blog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Blog not found"})
			return
		}
		if err != nil {
			upstreamFailure(w, r, log, "Failed to fetch blog", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func CreateBlogHandler(svc *blog.Service, maxMemory int64, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, media, cleanup, err := readBlogForm(r, maxMemory)
		if err != nil {
			badRequest(w, err)
			return
		}
		defer cleanup()

		p, err := svc.Create(r.Context(), blog.Input{Title: f.Title, Content: f.Content, Media: media})
		if err != nil {
			upstreamFailure(w, r, log, "Failed to add blog", err)
			return
		}
		log.Info("blog added", "id", p.ID, "media", p.MediaURL != nil, "by", authmw.SubjectFromContext(r.Context()))
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Blog added successfully!",
			"summary": p.Summary,
		})
	}
}

func UpdateBlogHandler(svc *blog.Service, maxMemory int64, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		f, media, cleanup, err := readBlogForm(r, maxMemory)
		if err != nil {
			badRequest(w, err)
			return
		}
		defer cleanup()

		if err := svc.Update(r.Context(), id, blog.Input{Title: f.Title, Content: f.Content, Media: media}); err != nil {
			upstreamFailure(w, r, log, "Failed to update blog", err)
			return
		}
		log.Info("blog updated", "id", id, "media", media != nil, "by", authmw.SubjectFromContext(r.Context()))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Blog updated successfully!"})
	}
}

func DeleteBlogHandler(svc *blog.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		err = svc.Delete(r.Context(), id)
		if errors.Is(err, blog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Blog with ID %d not found.", id)})
			return
		}
		if err != nil {
			upstreamFailure(w, r, log, "Failed to delete blog", err)
			return
		}
		log.Info("blog deleted", "id", id, "by", authmw.SubjectFromContext(r.Context()))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Blog deleted successfully!"})
	}
}
