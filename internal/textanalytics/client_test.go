package textanalytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path, key string
	docs      []document
}

func fake(t *testing.T, status int, reply string) (*Client, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.key = r.Header.Get("Ocp-Apim-Subscription-Key")
		var body struct {
			Documents []document `json:"documents"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.docs = body.Documents
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "k-123", 2*time.Second), c
}

func TestKeyPhrases(t *testing.T) {
	c, got := fake(t, http.StatusOK, `{"documents":[{"id":"1","keyPhrases":["Hello","world"]}],"errors":[]}`)
	phrases, err := c.KeyPhrases(context.Background(), "Hello world")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "world"}, phrases)

	assert.Equal(t, keyPhrasesPath, got.path)
	assert.Equal(t, "k-123", got.key)
	assert.Equal(t, []document{{ID: "1", Language: "en", Text: "Hello world"}}, got.docs)
}

func TestKeyPhrasesNoDocuments(t *testing.T) {
	c, _ := fake(t, http.StatusOK, `{"documents":[],"errors":[]}`)
	phrases, err := c.KeyPhrases(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, phrases)
}

func TestKeyPhrasesDocumentError(t *testing.T) {
	c, _ := fake(t, http.StatusOK, `{"documents":[],"errors":[{"id":"1","error":{"code":"InvalidDocument","message":"empty"}}]}`)
	phrases, err := c.KeyPhrases(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, phrases)
}

func TestSummarizeDocumentError(t *testing.T) {
	c, _ := fake(t, http.StatusOK, `{"documents":[],"errors":[{"id":"1","error":{"code":"InvalidArgument","message":"Invalid document in request."}}]}`)
	s, err := c.Summarize(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestKeyPhrasesUpstreamFailure(t *testing.T) {
	c, _ := fake(t, http.StatusUnauthorized, `{"error":{"code":"401"}}`)
	_, err := c.KeyPhrases(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSummarizeSentences(t *testing.T) {
	c, got := fake(t, http.StatusOK, `{"documents":[{"id":"1","sentences":[{"text":"First. "},{"text":"Second."}]}]}`)
	s, err := c.Summarize(context.Background(), "long text")
	require.NoError(t, err)
	assert.Equal(t, "First. Second.", s)
	assert.Equal(t, summarizePath, got.path)
}

func TestSummarizeSummaryField(t *testing.T) {
	c, _ := fake(t, http.StatusOK, `{"documents":[{"id":"1","summary":"Short."}]}`)
	s, err := c.Summarize(context.Background(), "long text")
	require.NoError(t, err)
	assert.Equal(t, "Short.", s)
}

func TestSummarizeNothing(t *testing.T) {
	c, _ := fake(t, http.StatusOK, `{"documents":[{"id":"1"}]}`)
	s, err := c.Summarize(context.Background(), "long text")
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestUnconfiguredEndpoint(t *testing.T) {
	c := New("", "", time.Second)
	_, err := c.KeyPhrases(context.Background(), "x")
	require.Error(t, err)
}
