package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/newsloom/newsloom/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gemini-2.0-flash-exp"

// Client implements the Gemini driver via direct HTTP against the
// generative language API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}

	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
		Timeout: 120 * time.Second,
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "gemini"
}

// Complete sends a generateContent request.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	payload, err := buildGenerateRequest(req)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}

	var parsed generateContentResponse
	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	if err := c.post(ctx, endpoint, payload, &parsed); err != nil {
		return nil, err
	}

	return toDriverResponse(&parsed)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + endpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("x-goog-api-key", c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &llm.ProviderError{
			Provider:    "gemini",
			StatusCode:  resp.StatusCode,
			Message:     strings.TrimSpace(string(respBody)),
			RawResponse: respBody,
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
