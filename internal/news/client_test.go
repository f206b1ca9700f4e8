package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/everything", r.URL.Path)
		query := r.URL.Query()
		require.Equal(t, "artificial intelligence", query.Get("q"))
		require.Equal(t, "test-key", query.Get("apiKey"))
		require.Equal(t, "en", query.Get("language"))
		require.Equal(t, "publishedAt", query.Get("sortBy"))
		require.Equal(t, "2", query.Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "AI breakthrough", "description": "big news", "url": "https://example.com/a",
				 "publishedAt": "2026-03-01T08:00:00Z", "source": {"name": "Example Times"}},
				{"title": "More AI", "description": "", "url": "https://example.com/b",
				 "publishedAt": "2026-03-01T07:00:00Z", "source": {"name": "Daily Example"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	articles, err := client.Search(context.Background(), "artificial intelligence")

	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, "AI breakthrough", articles[0].Title)
	require.Equal(t, "Example Times", articles[0].Source)
	require.Equal(t, "https://example.com/b", articles[1].URL)
}

func TestSearchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.Search(context.Background(), "anything")

	require.Error(t, err)
	require.Contains(t, err.Error(), "news api returned status 401")
}

func TestSearchErrorStatusBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"too many requests today"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Search(context.Background(), "anything")

	require.Error(t, err)
	require.Contains(t, err.Error(), "too many requests today")
}

func TestSearchRequiresKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
}
