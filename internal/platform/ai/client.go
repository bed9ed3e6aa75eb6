// Package ai is the client for the external prompt-execution and chat service.
//
// Both endpoints are one-shot request/response calls:
//
//	POST {base}/execute  {"promptId":"p1","promptText":"..."} -> {"response":"..."}
//	POST {base}/chat     {"message":"..."}                    -> {"response":"..."}
//
// Failed calls carry {"error":"..."} or {"message":"..."} in the body.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ErrNotConfigured is returned by every call when no service URL is set.
var ErrNotConfigured = errors.New("ai service not configured")

// Config configures the client. An empty BaseURL yields a client whose calls
// all fail with ErrNotConfigured.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the AI service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
	}
}

// Configured reports whether the client has a service URL.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ai service returned %d: %s", e.StatusCode, e.Message)
}

type executeRequest struct {
	PromptID   string `json:"promptId"`
	PromptText string `json:"promptText"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type replyBody struct {
	Response string `json:"response"`
	Error    string `json:"error"`
	Message  string `json:"message"`
}

// Execute runs a catalog prompt and returns the response text.
func (c *Client) Execute(ctx context.Context, promptID, promptText string) (string, error) {
	return c.post(ctx, "/execute", executeRequest{PromptID: promptID, PromptText: promptText})
}

// Chat sends a free-text message and returns the reply text.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.post(ctx, "/chat", chatRequest{Message: message})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai service %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out replyBody
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	return out.Response, nil
}
