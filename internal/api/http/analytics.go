package http

import (
	"context"
	"log/slog"
	"net/http"
)

const noSummaryGenerated = "No summary generated"

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func SummarizeHandler(s Summarizer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err)
			return
		}
		summary, err := s.Summarize(r.Context(), req.Content)
		if err != nil {
			upstreamFailure(w, r, log, "Text Analytics API failed", err)
			return
		}
		if summary == "" {
			summary = noSummaryGenerated
		}
		writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	}
}

func TestConnectionHandler(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			log.Error("database connection error", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Database connection successful!"})
	}
}
