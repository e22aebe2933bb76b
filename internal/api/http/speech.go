package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, w io.Writer) error
}

// SynthesizeHandler renders text into a per-request file under dir, streams
// it back and removes it on every path out.
func SynthesizeHandler(s Synthesizer, dir string, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err)
			return
		}

		path := filepath.Join(dir, "synthesis-"+uuid.NewString()+".wav")
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			log.Error("create synthesis output", "path", path, "err", err)
			http.Error(w, "Failed to synthesize speech.", http.StatusInternalServerError)
			return
		}
		defer func() {
			_ = f.Close()
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Warn("remove synthesis output", "path", path, "err", err)
			}
		}()

		if err := s.Synthesize(r.Context(), req.Text, f); err != nil {
			log.Error("speech synthesis failed", "err", err)
			http.Error(w, "Speech synthesis failed.", http.StatusInternalServerError)
			return
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			log.Error("rewind synthesis output", "err", err)
			http.Error(w, "Failed to synthesize speech.", http.StatusInternalServerError)
			return
		}
		log.Debug("speech synthesis succeeded", "path", path)
		w.Header().Set("Content-Type", "audio/wav")
		http.ServeContent(w, r, "output.wav", time.Time{}, f)
	}
}
