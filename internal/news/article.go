package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// maxArticleBytes caps how much of a page is read. Articles past this point
// add noise, not signal.
const maxArticleBytes = 1 << 20

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Fetcher downloads article pages and reduces them to plain text.
type Fetcher struct {
	HTTPClient *http.Client
}

// FetchText downloads the page at url and strips markup.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("article url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "newsloom/1.0")

	client := http.DefaultClient
	if f != nil && f.HTTPClient != nil {
		client = f.HTTPClient
	} else if f != nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}

	text := StripHTML(string(body))
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", url)
	}
	return text, nil
}

// StripHTML removes script, style, and markup, collapsing whitespace.
func StripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
