package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	gdeltEndpoint   = "https://api.gdeltproject.org/api/v2/doc/doc"
	gdeltMaxRecords = 100

	// GDELT seendate format, always UTC.
	gdeltTimeLayout = "20060102T150405Z"
)

// gdeltQueries cover the breaking-news beats the pipeline tracks. One API
// call per query per window keeps us well under GDELT's rate limits.
var gdeltQueries = []string{
	`(earthquake OR flood OR wildfire OR hurricane OR eruption) sourcelang:english`,
	`(outbreak OR epidemic OR "health emergency") sourcelang:english`,
	`(conflict OR airstrike OR ceasefire OR sanctions) sourcelang:english`,
}

// GDELT is the Tier-1 fast fetcher over the GDELT DOC 2.0 API.
type GDELT struct{}

// NewGDELT creates the GDELT fetcher. No credentials required.
func NewGDELT() *GDELT { return &GDELT{} }

func (g *GDELT) Name() string { return "gdelt" }

// Fetch pulls articles GDELT first saw inside the window.
func (g *GDELT) Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error) {
	minutes := int(window.Minutes())
	if minutes < 1 {
		minutes = 15
	}

	var out []RawArticle
	seen := make(map[string]bool)

	for _, query := range gdeltQueries {
		if ctx.Err() != nil {
			break
		}

		q := url.Values{}
		q.Set("query", query)
		q.Set("mode", "artlist")
		q.Set("format", "json")
		q.Set("maxrecords", fmt.Sprint(gdeltMaxRecords))
		q.Set("timespan", fmt.Sprintf("%dmin", minutes))
		q.Set("sort", "datedesc")

		var payload struct {
			Articles []struct {
				URL      string `json:"url"`
				Title    string `json:"title"`
				SeenDate string `json:"seendate"`
				Domain   string `json:"domain"`
				Language string `json:"language"`
			} `json:"articles"`
		}
		if err := getJSON(ctx, gdeltEndpoint+"?"+q.Encode(), &payload); err != nil {
			// One failed beat query should not sink the others.
			if len(out) > 0 {
				continue
			}
			return nil, fmt.Errorf("gdelt: %w", err)
		}

		for _, a := range payload.Articles {
			if a.URL == "" || a.Title == "" || seen[a.URL] {
				continue
			}
			ts, err := time.Parse(gdeltTimeLayout, a.SeenDate)
			if err != nil {
				continue
			}
			domain := strings.ToLower(a.Domain)
			if domain == "" {
				domain = domainOf(a.URL)
			}
			if domain == "" {
				continue
			}
			seen[a.URL] = true
			out = append(out, RawArticle{
				URL:          a.URL,
				SourceDomain: domain,
				Title:        a.Title,
				PublishedAt:  ts.UTC(),
			})
		}
	}
	return out, nil
}
