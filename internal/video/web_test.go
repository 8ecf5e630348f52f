package video

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestWebSearcher_FirstLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		assert.Equal(t, "engine", r.URL.Query().Get("cx"))
		assert.Equal(t, "go maps", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{{"link": "https://go.dev/blog/maps", "title": "Go maps in action"}},
		})
	}))
	defer server.Close()

	s, err := NewWebSearcher(context.Background(), "key", "engine", option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	p, err := s.SearchPage(context.Background(), "go maps")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "https://go.dev/blog/maps", p.URL)
}

func TestWebSearcher_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s, err := NewWebSearcher(context.Background(), "key", "engine", option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	_, err = s.SearchPage(context.Background(), "go maps")
	assert.ErrorContains(t, err, "web search failed")
}

func TestNewPageSearcher_Disabled(t *testing.T) {
	for _, tc := range []struct{ key, cx string }{{"", ""}, {"key", ""}, {"", "cx"}} {
		p, err := NewPageSearcher(context.Background(), tc.key, tc.cx, slog.Default())
		require.NoError(t, err)
		assert.Nil(t, p)
	}
}
