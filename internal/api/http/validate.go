package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-blog/internal/blog"
)

const (
	maxTitleLen    = 200
	maxContentLen  = 125000
	maxQuestionLen = 4000
	maxSpeechLen   = 5000
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// validator is implemented by every request body the API accepts.
type validator interface {
	Validate() error
}

func required(field, v string, max int) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if utf8.RuneCountInString(v) > max {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}

type blogForm struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (f blogForm) Validate() error {
	if err := required("title", f.Title, maxTitleLen); err != nil {
		return err
	}
	return required("content", f.Content, maxContentLen)
}

type summarizeRequest struct {
	Content string `json:"content"`
}

func (s summarizeRequest) Validate() error { return required("content", s.Content, maxContentLen) }

type chatRequest struct {
	Question string `json:"question"`
}

func (c chatRequest) Validate() error { return required("question", c.Question, maxQuestionLen) }

type synthesizeRequest struct {
	Text string `json:"text"`
}

func (s synthesizeRequest) Validate() error { return required("text", s.Text, maxSpeechLen) }

// decodeJSON fills dst (a pointer) from the body and validates it.
func decodeJSON(r *http.Request, dst validator) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return &ValidationError{Field: "body", Reason: "malformed json: " + err.Error()}
	}
	return dst.Validate()
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// readBlogForm accepts multipart (with an optional "file" part), urlencoded
// or JSON bodies. The returned cleanup must be called once the media body has
// been consumed.
func readBlogForm(r *http.Request, maxMemory int64) (blogForm, *blog.Media, func(), error) {
	noop := func() {}
	var f blogForm

	switch mediaType(r) {
	case "application/json":
		if err := decodeJSON(r, &f); err != nil {
			return blogForm{}, nil, noop, err
		}
		return f, nil, noop, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return blogForm{}, nil, noop, formError(err)
		}
		cleanup := func() { _ = r.MultipartForm.RemoveAll() }
		f = blogForm{Title: r.FormValue("title"), Content: r.FormValue("content")}
		if err := f.Validate(); err != nil {
			cleanup()
			return blogForm{}, nil, noop, err
		}
		file, hdr, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return f, nil, cleanup, nil
		}
		if err != nil {
			cleanup()
			return blogForm{}, nil, noop, formError(err)
		}
		m := &blog.Media{Name: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Body: file}
		return f, m, func() { _ = file.Close(); cleanup() }, nil

	default:
		if err := r.ParseForm(); err != nil {
			return blogForm{}, nil, noop, formError(err)
		}
		f = blogForm{Title: r.PostFormValue("title"), Content: r.PostFormValue("content")}
		if err := f.Validate(); err != nil {
			return blogForm{}, nil, noop, err
		}
		return f, nil, noop, nil
	}
}

func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return err
	}
	return &ValidationError{Field: "body", Reason: err.Error()}
}
