package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-blog/internal/blog"
	"github.com/mind-engage/mindengage-blog/internal/storage"
)

type Deps struct {
	Blogs      *blog.Service
	Blobs      storage.BlobStore
	Summarizer Summarizer
	Chat       Asker
	Speech     Synthesizer
	DB         Pinger
	Log        *slog.Logger

	SpeechDir      string
	MaxUploadBytes int64

	// Guard wraps the routes that write; nil leaves them open.
	Guard func(http.Handler) http.Handler
}

// Mount registers the blog API on r.
func Mount(r chi.Router, d Deps) {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.SpeechDir == "" {
		d.SpeechDir = os.TempDir()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 32 << 20
	}
	limit := maxBody(d.MaxUploadBytes)

	r.Get("/test-connection", TestConnectionHandler(d.DB, d.Log))
	r.Get("/blogs", ListBlogsHandler(d.Blogs, d.Log))
	r.Get("/blogs/{id}", GetBlogHandler(d.Blogs, d.Log))
	r.Get("/files/{filename}", FileRedirectHandler(d.Blobs, d.Log))

	r.Group(func(pr chi.Router) {
		pr.Use(limit)
		pr.Post("/test-summarization", SummarizeHandler(d.Summarizer, d.Log))
		pr.Post("/chatbot", ChatbotHandler(d.Chat, d.Log))
		pr.Post("/synthesize", SynthesizeHandler(d.Speech, d.SpeechDir, d.Log))
	})

	r.Group(func(wr chi.Router) {
		if d.Guard != nil {
			wr.Use(d.Guard)
		}
		wr.Use(limit)
		wr.Post("/upload", UploadHandler(d.Blogs, d.MaxUploadBytes, d.Log))
		wr.Post("/blogs", CreateBlogHandler(d.Blogs, d.MaxUploadBytes, d.Log))
		wr.Put("/blogs/{id}", UpdateBlogHandler(d.Blogs, d.MaxUploadBytes, d.Log))
		wr.Delete("/blogs/{id}", DeleteBlogHandler(d.Blogs, d.Log))
	})
}

func maxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
