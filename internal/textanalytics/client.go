// Package textanalytics talks to a managed text-analytics service for key
// phrases and extractive summaries.
package textanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-blog/internal/upstream"
)

const (
	keyPhrasesPath = "/text/analytics/v3.1/keyPhrases"
	summarizePath  = "/text/analytics/v3.1-preview.1/extractiveSummarization"
)

type Client struct {
	http     *http.Client
	endpoint string
	key      string
	log      *slog.Logger
}

func New(endpoint, key string, timeout time.Duration) *Client {
	return &Client{
		http:     upstream.NewHTTPClient(timeout),
		endpoint: strings.TrimSuffix(endpoint, "/"),
		key:      key,
		log:      slog.Default(),
	}
}

type document struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type docError struct {
	ID    string `json:"id"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// KeyPhrases returns the phrases found in text, possibly none. A document the
// service rejects (too long, unsupported language) yields no phrases.
func (c *Client) KeyPhrases(ctx context.Context, text string) ([]string, error) {
	var out struct {
		Documents []struct {
			ID         string   `json:"id"`
			KeyPhrases []string `json:"keyPhrases"`
		} `json:"documents"`
		Errors []docError `json:"errors"`
	}
	if err := c.post(ctx, keyPhrasesPath, text, &out); err != nil {
		return nil, err
	}
	if len(out.Documents) == 0 {
		c.logDocError("key phrases", out.Errors)
		return nil, nil
	}
	return out.Documents[0].KeyPhrases, nil
}

// Summarize returns the extractive summary of text, or "" when the service
// produced none or rejected the document.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	var out struct {
		Documents []struct {
			ID        string          `json:"id"`
			Summary   json.RawMessage `json:"summary"`
			Sentences []struct {
				Text string `json:"text"`
			} `json:"sentences"`
		} `json:"documents"`
		Errors []docError `json:"errors"`
	}
	if err := c.post(ctx, summarizePath, text, &out); err != nil {
		return "", err
	}
	if len(out.Documents) == 0 {
		c.logDocError("summarization", out.Errors)
		return "", nil
	}
	doc := out.Documents[0]
	if len(doc.Sentences) > 0 {
		parts := make([]string, 0, len(doc.Sentences))
		for _, s := range doc.Sentences {
			parts = append(parts, strings.TrimSpace(s.Text))
		}
		return strings.Join(parts, " "), nil
	}
	var s string
	if err := json.Unmarshal(doc.Summary, &s); err == nil {
		return s, nil
	}
	return "", nil
}

func (c *Client) post(ctx context.Context, path, text string, out any) error {
	if c.endpoint == "" {
		return errors.New("textanalytics: endpoint not configured")
	}
	body, err := json.Marshal(map[string]any{
		"documents": []document{{ID: "1", Language: "en", Text: text}},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := upstream.CheckStatus("textanalytics", res); err != nil {
		return err
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("textanalytics: decode: %w", err)
	}
	return nil
}

func (c *Client) logDocError(op string, errs []docError) {
	for _, e := range errs {
		c.log.Warn("textanalytics: document rejected",
			"op", op, "doc", e.ID, "code", e.Error.Code, "message", e.Error.Message)
	}
}
