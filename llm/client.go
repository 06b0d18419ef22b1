// Package llm calls a local Ollama generator and validates its output
// before it is allowed anywhere near a conversation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnavailable covers transport failures, timeouts and non-200
	// statuses. Callers fall through to the canned pools.
	ErrUnavailable = errors.New("generator unavailable")
	// ErrRejected means the generator answered but the reply failed
	// validation. Output is discarded wholesale, never repaired.
	ErrRejected = errors.New("generator reply rejected")
)

// Client is a thin Ollama HTTP client with a short per-call timeout.
type Client struct {
	httpClient *http.Client
	url        string
	model      string
	timeout    time.Duration
}

// NewClient builds a client for the given Ollama base URL. A zero
// timeout defaults to ten seconds.
func NewClient(url, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	url = strings.TrimSuffix(url, "/")
	if !strings.HasSuffix(url, "/api/generate") {
		url += "/api/generate"
	}
	return &Client{
		httpClient: &http.Client{},
		url:        url,
		model:      model,
		timeout:    timeout,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Attempt asks the generator for a reply to message in the persona's
// voice and validates it. It returns ErrUnavailable when the generator
// cannot be reached in time and ErrRejected when the reply fails any
// acceptance check.
func (c *Client) Attempt(ctx context.Context, message string, p PersonaPrompt) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(message, p),
		Stream: false,
		Options: generateOptions{
			Temperature: 0.5,
			TopP:        0.8,
			NumPredict:  15,
		},
	})
	if err != nil {
		return "", fmt.Errorf("could not marshal generate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	answer := strings.TrimSpace(parsed.Response)
	if err := validate(answer, p.Language); err != nil {
		return "", err
	}
	return answer, nil
}
