package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>x</title>
			<script>var tracking = true;</script>
			<style>body { color: red }</style></head>
			<body><h1>Breaking News</h1><p>Something &amp; something else happened.</p></body></html>`))
	}))
	defer server.Close()

	fetcher := &Fetcher{HTTPClient: server.Client()}
	text, err := fetcher.FetchText(context.Background(), server.URL)

	require.NoError(t, err)
	require.Contains(t, text, "Breaking News")
	require.Contains(t, text, "Something & something else happened.")
	require.NotContains(t, text, "tracking")
	require.NotContains(t, text, "color: red")
	require.NotContains(t, text, "<p>")
}

func TestFetchTextNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := &Fetcher{HTTPClient: server.Client()}
	_, err := fetcher.FetchText(context.Background(), server.URL)

	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestFetchTextEmptyURL(t *testing.T) {
	fetcher := &Fetcher{}
	_, err := fetcher.FetchText(context.Background(), "  ")
	require.Error(t, err)
}

func TestStripHTMLCollapsesWhitespace(t *testing.T) {
	text := StripHTML("<div>one</div>\n\n\n  <span>two</span>")
	require.Equal(t, "one two", text)
}
