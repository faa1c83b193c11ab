package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launcify/launcify-api/pkg/httpclient"
	"github.com/launcify/launcify-api/pkg/llm"
	"github.com/launcify/launcify-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Level:       "info",
		Environment: "test",
	})
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func defaultOptions() llm.CallOptions {
	return llm.CallOptions{
		Temperature: 0.35,
		MaxTokens:   800,
		Timeout:     5 * time.Second,
	}
}

func TestClient_Complete_Success(t *testing.T) {
	var captured struct {
		auth        string
		contentType string
		path        string
		payload     map[string]any
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.contentType = r.Header.Get("Content-Type")
		captured.path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&captured.payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"weeks": 4}`)))
	}))
	defer server.Close()

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	content, err := client.Complete(context.Background(), "system prompt", "user prompt", defaultOptions())

	require.NoError(t, err)
	assert.Equal(t, `{"weeks": 4}`, content)

	assert.Equal(t, "Bearer gsk_test", captured.auth)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, "/chat/completions", captured.path)
	assert.Equal(t, "llama3-8b-8192", captured.payload["model"])
	assert.Equal(t, 0.35, captured.payload["temperature"])
	assert.Equal(t, float64(800), captured.payload["max_tokens"])

	format, ok := captured.payload["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])

	messages, ok := captured.payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system prompt", first["content"])
}

func TestClient_Complete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	opts := defaultOptions()
	opts.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := client.Complete(context.Background(), "s", "u", opts)

	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second, "the deadline aborts the call promptly")
}

func TestClient_Complete_TimeoutDuringBodyRead(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Headers go out immediately; the body never finishes.
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	opts := defaultOptions()
	opts.Timeout = 100 * time.Millisecond

	_, err := client.Complete(context.Background(), "s", "u", opts)

	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.NotErrorIs(t, err, llm.ErrUpstream)
}

func TestClient_Complete_UpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit reached"}}`))
	}))
	defer server.Close()

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	_, err := client.Complete(context.Background(), "s", "u", defaultOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUpstream)
	assert.NotErrorIs(t, err, llm.ErrTimeout)
	assert.NotContains(t, err.Error(), "rate limit reached", "provider body stays out of the error")
}

func TestClient_Complete_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	_, err := client.Complete(context.Background(), "s", "u", defaultOptions())

	assert.ErrorIs(t, err, llm.ErrUpstream)
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	_, err := client.Complete(context.Background(), "s", "u", defaultOptions())

	assert.ErrorIs(t, err, llm.ErrUpstream)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_Complete_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := llm.NewClient("gsk_test", server.URL, "llama3-8b-8192", httpclient.NewStandardClient())

	_, err := client.Complete(context.Background(), "s", "u", defaultOptions())

	assert.ErrorIs(t, err, llm.ErrUpstream)
}
