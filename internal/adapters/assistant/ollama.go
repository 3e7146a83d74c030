package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hermes/pkg/errors"
)

// Client talks to a local Ollama-compatible inference endpoint:
// GET /api/tags as a health probe and POST /api/generate for
// non-streaming completions.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int

	httpClient   *http.Client
	healthClient *http.Client
}

// NewClient creates an inference client for the given endpoint and model.
func NewClient(baseURL, model string, temperature float64, maxTokens int, requestTimeout, healthTimeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		healthClient: &http.Client{
			Timeout: healthTimeout,
		},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Health probes the endpoint's tag listing. Any failure means the local
// model is not reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrAssistantOffline, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrAssistantOffline, "tags endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends prompt for a non-streaming completion and returns the
// model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrAssistantOffline, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(errors.ErrAssistantOffline, "generate endpoint returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(errors.ErrParse, err.Error())
	}

	return out.Response, nil
}
