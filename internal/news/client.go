package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://newsapi.org"

// DefaultPageSize keeps fetches small so a single run stays inside the
// downstream LLM and embedding budgets.
const DefaultPageSize = 2

// Article is one result from the everything endpoint.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// Client fetches recent articles from newsapi.org.
type Client struct {
	BaseURL    string
	APIKey     string
	PageSize   int
	HTTPClient *http.Client
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		BaseURL:  base,
		APIKey:   strings.TrimSpace(apiKey),
		PageSize: DefaultPageSize,
	}
}

type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Search queries the everything endpoint for recent English articles sorted
// by publish date.
func (c *Client) Search(ctx context.Context, topic string) ([]Article, error) {
	if c == nil {
		return nil, fmt.Errorf("news client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("news api key is required")
	}

	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	query := url.Values{}
	query.Set("q", topic)
	query.Set("apiKey", c.APIKey)
	query.Set("language", "en")
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", strconv.Itoa(pageSize))

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/v2/everything?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news api request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed everythingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Status != "" && parsed.Status != "ok" {
		return nil, fmt.Errorf("news api error: %s", parsed.Message)
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
