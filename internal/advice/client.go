// Package advice turns a score set into optional natural-language guidance by
// calling an external text-generation service. Enrichment is strictly
// best-effort: every failure is absorbed and reported as "no advice".
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yoxo/internal/logging"
)

const defaultClientTimeout = 5 * time.Second

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientConfig configures the completion-service client.
type ClientConfig struct {
	// BaseURL is the service endpoint root, e.g. https://api.dify.ai/v1.
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// Timeout bounds each request; a slow advice service must never stall a
	// submission.
	Timeout time.Duration
	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// Client calls a Dify-style completion endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient builds a completion client. BaseURL is required.
func NewClient(config ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("advice service base URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultClientTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: httpClient,
		logger:     logging.NewComponentLogger("AdviceClient"),
	}, nil
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages     []completionMessage `json:"messages"`
	ResponseMode string              `json:"response_mode"`
}

type completionResponse struct {
	Answer string `json:"answer"`
}

// Generate sends the prompt in blocking mode and returns the service's
// single free-text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Messages:     []completionMessage{{Role: "user", Content: prompt}},
		ResponseMode: "blocking",
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completion-messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Error closing response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("completion service returned %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if strings.TrimSpace(parsed.Answer) == "" {
		return "", fmt.Errorf("completion response carried no answer")
	}
	return parsed.Answer, nil
}
