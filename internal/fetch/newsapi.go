package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const newsAPIEndpoint = "https://newsapi.org/v2/top-headlines"

// NewsAPI fetches top headlines from newsapi.org. Disabled (constructor
// returns nil) when no API key is configured.
type NewsAPI struct {
	key string
}

// NewNewsAPI creates the NewsAPI fetcher, or nil when key is empty.
func NewNewsAPI(key string) *NewsAPI {
	if key == "" {
		return nil
	}
	return &NewsAPI{key: key}
}

func (n *NewsAPI) Name() string { return "newsapi" }

// Fetch pulls one page of general top headlines. One call per window keeps
// the free-tier quota intact.
func (n *NewsAPI) Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error) {
	q := url.Values{}
	q.Set("language", "en")
	q.Set("category", "general")
	q.Set("pageSize", "100")
	q.Set("apiKey", n.key)

	var payload struct {
		Status   string `json:"status"`
		Articles []struct {
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			Title       string    `json:"title"`
			Description string    `json:"description"`
			Content     string    `json:"content"`
			URL         string    `json:"url"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := getJSON(ctx, newsAPIEndpoint+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi: %w: status %q", ErrSourceUnavailable, payload.Status)
	}

	var out []RawArticle
	for _, a := range payload.Articles {
		if a.URL == "" || a.Title == "" || !inWindow(a.PublishedAt, window) {
			continue
		}
		domain := domainOf(a.URL)
		if domain == "" {
			continue
		}
		out = append(out, RawArticle{
			URL:          a.URL,
			SourceDomain: domain,
			Title:        strings.TrimSpace(a.Title),
			Summary:      strings.TrimSpace(a.Description),
			Snippet:      strings.TrimSpace(a.Content),
			PublishedAt:  a.PublishedAt.UTC(),
		})
	}
	return out, nil
}
