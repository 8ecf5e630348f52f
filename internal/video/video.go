// Package video finds tutorial videos and builds links for suggested resources.
package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Video is a single search hit.
type Video struct {
	ID    string
	Title string
}

// WatchURL returns the watch page for v.
func (v *Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Searcher finds the best matching video for a query.
// A nil Video with a nil error means nothing matched.
type Searcher interface {
	Search(ctx context.Context, query string) (*Video, error)
}

// YouTubeSearcher queries the YouTube Data API v3.
type YouTubeSearcher struct {
	service *youtube.Service
}

// NewYouTubeSearcher creates a searcher authenticated with apiKey.
// Extra client options (endpoint, HTTP client) are passed through.
func NewYouTubeSearcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	if apiKey == "" {
		return nil, errors.New("youtube API key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &YouTubeSearcher{service: svc}, nil
}

// Search returns the top video result for query.
func (s *YouTubeSearcher) Search(ctx context.Context, query string) (*Video, error) {
	resp, err := s.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		title := ""
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		return &Video{ID: item.Id.VideoId, Title: title}, nil
	}
	return nil, nil
}

// DisabledSearcher never finds anything. It stands in when no API key is configured.
type DisabledSearcher struct{}

// Search always reports no match.
func (DisabledSearcher) Search(context.Context, string) (*Video, error) {
	return nil, nil
}

// NewSearcher returns a YouTubeSearcher when apiKey is set and a
// DisabledSearcher otherwise.
func NewSearcher(ctx context.Context, apiKey string, logger *slog.Logger) (Searcher, error) {
	if apiKey == "" {
		if logger != nil {
			logger.Warn("YouTube API key not configured, video resources fall back to search links")
		}
		return DisabledSearcher{}, nil
	}
	return NewYouTubeSearcher(ctx, apiKey)
}
