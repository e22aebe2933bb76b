package http

import (
	"context"
	"log/slog"
	"net/http"
)

type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

func ChatbotHandler(c Asker, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err)
			return
		}
		answer, err := c.Ask(r.Context(), req.Question)
		if err != nil {
			upstreamFailure(w, r, log, "Failed to interact with chatbot", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
	}
}
