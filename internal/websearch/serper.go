package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/newsloom/newsloom/internal/quota"
)

const defaultBaseURL = "https://google.serper.dev"

// Defaults for the search call budget.
const (
	DefaultCeiling = 5
	DefaultBuffer  = 3 * time.Second
	preSearchPause = 2 * time.Second
)

// SerperClient performs web searches through the Serper API. Search never
// returns an error: tools consume its output as plain text, so failures come
// back as readable sentinel strings.
type SerperClient struct {
	BaseURL    string
	APIKey     string
	Limiter    *quota.Limiter
	HTTPClient *http.Client

	Sleep func(context.Context, time.Duration)
}

// NewSerperClient wires a client with the default limiter.
func NewSerperClient(apiKey string, journal quota.Journal) *SerperClient {
	return &SerperClient{
		BaseURL: defaultBaseURL,
		APIKey:  strings.TrimSpace(apiKey),
		Limiter: &quota.Limiter{
			Client:  "web_search",
			Ceiling: DefaultCeiling,
			Buffer:  DefaultBuffer,
			Journal: journal,
		},
	}
}

type serperRequest struct {
	Query string `json:"q"`
}

type serperResponse struct {
	Answer  *answerBox `json:"answerBox,omitempty"`
	Organic []organic  `json:"organic"`
}

type answerBox struct {
	Answer  string `json:"answer"`
	Snippet string `json:"snippet"`
}

type organic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search runs a web search and renders the results as text.
func (c *SerperClient) Search(ctx context.Context, query string) string {
	if c == nil || c.APIKey == "" {
		return "Serper API key not configured. Please set SERPER_API_KEY environment variable."
	}

	c.Limiter.Acquire(ctx)
	c.pause(ctx, preSearchPause)

	result, err := c.query(ctx, query)
	if err != nil {
		return fmt.Sprintf("Search error: %s", err)
	}
	return result
}

func (c *SerperClient) query(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(serperRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	url := strings.TrimRight(base, "/") + "/search"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed serperResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return renderResults(&parsed), nil
}

// renderResults flattens the response into the snippet text tools expect.
func renderResults(resp *serperResponse) string {
	var b strings.Builder

	if resp.Answer != nil {
		if resp.Answer.Answer != "" {
			b.WriteString(resp.Answer.Answer)
			b.WriteString("\n\n")
		} else if resp.Answer.Snippet != "" {
			b.WriteString(resp.Answer.Snippet)
			b.WriteString("\n\n")
		}
	}

	for i, item := range resp.Organic {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n%s\n%s\n", item.Title, item.Snippet, item.Link)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "No results found."
	}
	return text
}

func (c *SerperClient) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(ctx, d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
