package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const mediastackEndpoint = "http://api.mediastack.com/v1/news"

// mediastack publishes timestamps as "2024-01-02T15:04:05+00:00".
const mediastackTimeLayout = "2006-01-02T15:04:05-07:00"

// Mediastack fetches live news from mediastack.com. Disabled when no API
// key is configured.
type Mediastack struct {
	key string
}

// NewMediastack creates the Mediastack fetcher, or nil when key is empty.
func NewMediastack(key string) *Mediastack {
	if key == "" {
		return nil
	}
	return &Mediastack{key: key}
}

func (m *Mediastack) Name() string { return "mediastack" }

// Fetch pulls one page of live general news, one call per window.
func (m *Mediastack) Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error) {
	q := url.Values{}
	q.Set("access_key", m.key)
	q.Set("languages", "en")
	q.Set("categories", "general")
	q.Set("sort", "published_desc")
	q.Set("limit", "100")

	var payload struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
		Data []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
		} `json:"data"`
	}
	if err := getJSON(ctx, mediastackEndpoint+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("mediastack: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("mediastack: %w: %s", ErrSourceUnavailable, payload.Error.Code)
	}

	var out []RawArticle
	for _, a := range payload.Data {
		if a.URL == "" || a.Title == "" {
			continue
		}
		ts, err := time.Parse(mediastackTimeLayout, a.PublishedAt)
		if err != nil || !inWindow(ts, window) {
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
			PublishedAt:  ts.UTC(),
		})
	}
	return out, nil
}
