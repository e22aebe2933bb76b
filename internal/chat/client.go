// Package chat sends single-turn questions to a chat-completion deployment.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-blog/internal/upstream"
)

// SystemPrompt frames every question as a request to a blog-writing assistant.
const SystemPrompt = `You are a blog writing assistant. Format the response in Markdown. Use:
- Headings with '#' (e.g., # for main headings, ## for subheadings).
- Separate paragraphs with double line breaks.
- Ensure the response is detailed, complete, and well-structured.
If the user asks for a blog, write a full-length blog covering the topic in-depth.`

const (
	MaxTokens   = 1000
	Temperature = 0.7
)

type Client struct {
	http   *http.Client
	url    string
	apiKey string
}

func New(url, apiKey string, timeout time.Duration) *Client {
	return &Client{http: upstream.NewHTTPClient(timeout), url: url, apiKey: apiKey}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Ask returns the first completion for question with surrounding whitespace
// removed. There is no conversation history.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: question},
		},
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if err := upstream.CheckStatus("chat", res); err != nil {
		return "", err
	}
	var out completionResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat: decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat: no choices returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
