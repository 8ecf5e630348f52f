package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Page is a single web search hit.
type Page struct {
	URL   string
	Title string
}

// PageSearcher finds the best matching web page for a query.
// A nil Page with a nil error means nothing matched.
type PageSearcher interface {
	SearchPage(ctx context.Context, query string) (*Page, error)
}

// WebSearcher queries a Google Programmable Search engine.
type WebSearcher struct {
	service *customsearch.Service
	cx      string
}

// NewWebSearcher creates a searcher for the engine cx authenticated with apiKey.
func NewWebSearcher(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*WebSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, errors.New("search API key and engine ID are required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &WebSearcher{service: svc, cx: cx}, nil
}

// SearchPage returns the first result for query.
func (s *WebSearcher) SearchPage(ctx context.Context, query string) (*Page, error) {
	resp, err := s.service.Cse.List().Cx(s.cx).Q(query).Num(1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}
	for _, item := range resp.Items {
		if item.Link != "" {
			return &Page{URL: item.Link, Title: item.Title}, nil
		}
	}
	return nil, nil
}

// NewPageSearcher returns a WebSearcher when both credentials are set and nil
// otherwise, which leaves articles on redirect links.
func NewPageSearcher(ctx context.Context, apiKey, cx string, logger *slog.Logger) (PageSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, nil
	}
	ws, err := NewWebSearcher(ctx, apiKey, cx)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("web search enabled for article resources")
	}
	return ws, nil
}
