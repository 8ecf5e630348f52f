package video

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jonathan/skillforge/internal/types"
	"golang.org/x/sync/errgroup"
)

// Suggestion is a model-proposed resource before it has a URL.
type Suggestion struct {
	Title       string             `json:"title"`
	SearchQuery string             `json:"searchQuery"`
	Type        types.ResourceType `json:"type"`
}

// maxLookups bounds concurrent video lookups for one resource list.
const maxLookups = 4

// SearchURL is the YouTube results page for query.
func SearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}

// DuckyURL is a DuckDuckGo "I'm feeling ducky" redirect for query.
func DuckyURL(query string) string {
	return "https://duckduckgo.com/?q=!ducky+" + url.QueryEscape(query)
}

// DefaultQuery is used when a suggestion has no search query.
func DefaultQuery(topic, subtopic string) string {
	return strings.TrimSpace(subtopic + " " + topic + " tutorial")
}

// Resolver turns suggestions into resources with concrete links.
type Resolver struct {
	searcher Searcher
	pages    PageSearcher
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPageSearcher resolves doc and article suggestions to real pages.
func WithPageSearcher(p PageSearcher) ResolverOption {
	return func(r *Resolver) { r.pages = p }
}

// NewResolver creates a resolver. A nil searcher disables video lookups.
func NewResolver(searcher Searcher, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if searcher == nil {
		searcher = DisabledSearcher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{searcher: searcher, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve builds resources for the suggestions, keeping their order.
// Lookups run concurrently; a failed or empty video lookup falls back to a
// YouTube search link and a failed page lookup to a DuckDuckGo redirect.
// Unknown types are treated as articles.
func (r *Resolver) Resolve(ctx context.Context, topic, subtopic string, suggestions []Suggestion) []types.Resource {
	out := make([]types.Resource, len(suggestions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookups)

	for i, s := range suggestions {
		query := strings.TrimSpace(s.SearchQuery)
		if query == "" {
			query = DefaultQuery(topic, subtopic)
		}

		switch s.Type {
		case types.ResourceVideo:
			g.Go(func() error {
				out[i] = r.videoResource(gctx, s.Title, query)
				return nil
			})
		case types.ResourceDoc:
			query += " documentation"
			g.Go(func() error {
				out[i] = r.pageResource(gctx, s.Title, query, types.ResourceDoc)
				return nil
			})
		default:
			g.Go(func() error {
				out[i] = r.pageResource(gctx, s.Title, query, types.ResourceArticle)
				return nil
			})
		}
	}

	_ = g.Wait()
	return out
}

func (r *Resolver) videoResource(ctx context.Context, title, query string) types.Resource {
	v, err := r.searcher.Search(ctx, query)
	if err != nil {
		r.logger.Warn("video lookup failed", "query", query, "error", err)
	}
	if err != nil || v == nil {
		return types.Resource{Title: title, URL: SearchURL(query), Type: types.ResourceVideo}
	}
	if v.Title != "" {
		title = v.Title
	}
	return types.Resource{Title: title, URL: v.WatchURL(), Type: types.ResourceVideo}
}

func (r *Resolver) pageResource(ctx context.Context, title, query string, kind types.ResourceType) types.Resource {
	if r.pages == nil {
		return types.Resource{Title: title, URL: DuckyURL(query), Type: kind}
	}
	p, err := r.pages.SearchPage(ctx, query)
	if err != nil {
		r.logger.Warn("page lookup failed", "query", query, "error", err)
	}
	if err != nil || p == nil {
		return types.Resource{Title: title, URL: DuckyURL(query), Type: kind}
	}
	return types.Resource{Title: title, URL: p.URL, Type: kind}
}
