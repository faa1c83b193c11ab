package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/launcify/launcify-api/pkg/httpclient"
	"github.com/launcify/launcify-api/pkg/logger"
	"github.com/launcify/launcify-api/pkg/metrics"
	"go.uber.org/zap"
)

// Sentinel errors so callers can map outcomes to distinct HTTP statuses.
var (
	// ErrTimeout means the wall-clock deadline for the completion call
	// expired and the in-flight request was aborted.
	ErrTimeout = errors.New("llm: completion call timed out")
	// ErrUpstream covers non-2xx responses, network failures and malformed
	// response bodies.
	ErrUpstream = errors.New("llm: upstream failure")
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallOptions tune a single completion call.
type CallOptions struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient httpclient.Client
}

// NewClient creates a completion client. baseURL is the API root, e.g.
// "https://api.groq.com/openai/v1".
func NewClient(apiKey, baseURL, model string, httpClient httpclient.Client) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}
}

// Complete issues exactly one completion call with a hard deadline and
// returns the raw message content. There is no retry: a synchronous form
// submission is waiting on the other end, so bounded latency wins over
// completeness.
func (c *Client) Complete(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	payload := completionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    opts.Temperature,
		MaxTokens:      opts.MaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrUpstream, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		if callCtx.Err() != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			metrics.LLMRequestTotal.WithLabelValues(c.model, "timeout").Inc()
			logger.Warn("Completion call timed out",
				zap.String("model", c.model),
				zap.Duration("timeout", opts.Timeout))
			return "", ErrTimeout
		}
		metrics.LLMRequestTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	metrics.LLMRequestDuration.WithLabelValues(c.model).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body is logged for diagnosis; it never reaches the caller.
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		metrics.LLMRequestTotal.WithLabelValues(c.model, "upstream_error").Inc()
		logger.Error("Completion endpoint returned non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// The deadline can also expire mid-body, after headers arrived.
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			metrics.LLMRequestTotal.WithLabelValues(c.model, "timeout").Inc()
			logger.Warn("Completion call timed out reading the response",
				zap.String("model", c.model),
				zap.Duration("timeout", opts.Timeout))
			return "", ErrTimeout
		}
		metrics.LLMRequestTotal.WithLabelValues(c.model, "bad_response").Inc()
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		metrics.LLMRequestTotal.WithLabelValues(c.model, "bad_response").Inc()
		return "", fmt.Errorf("%w: response has no choices", ErrUpstream)
	}

	metrics.LLMRequestTotal.WithLabelValues(c.model, "success").Inc()
	return parsed.Choices[0].Message.Content, nil
}
