// Package speech turns text into WAV audio through a managed text-to-speech
// REST endpoint.
package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mind-engage/mindengage-blog/internal/upstream"
)

const OutputFormat = "riff-24khz-16bit-mono-pcm"

type Config struct {
	Region   string
	Key      string
	Endpoint string // overrides the regional endpoint
	Voice    string
	Timeout  time.Duration
}

type Client struct {
	http     *http.Client
	endpoint string
	key      string
	voice    string
}

func New(cfg Config) *Client {
	ep := cfg.Endpoint
	if ep == "" {
		ep = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region)
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "en-US-JennyNeural"
	}
	return &Client{
		http:     upstream.NewHTTPClient(cfg.Timeout),
		endpoint: ep,
		key:      cfg.Key,
		voice:    voice,
	}
}

// Synthesize writes the audio for text to w.
func (c *Client) Synthesize(ctx context.Context, text string, w io.Writer) error {
	ssml, err := c.ssml(text)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(ssml))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", OutputFormat)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("User-Agent", "mindengage-blog")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := upstream.CheckStatus("speech", res); err != nil {
		return err
	}
	n, err := io.Copy(w, res.Body)
	if err != nil {
		return fmt.Errorf("speech: read audio: %w", err)
	}
	if n == 0 {
		return errors.New("speech: empty audio")
	}
	return nil
}

func (c *Client) ssml(text string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<speak version="1.0" xml:lang="en-US"><voice name="`)
	if err := xml.EscapeText(&buf, []byte(c.voice)); err != nil {
		return nil, err
	}
	buf.WriteString(`">`)
	if err := xml.EscapeText(&buf, []byte(text)); err != nil {
		return nil, err
	}
	buf.WriteString(`</voice></speak>`)
	return buf.Bytes(), nil
}
