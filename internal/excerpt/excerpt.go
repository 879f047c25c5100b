// Package excerpt fills in article snippets for conflicted events by
// scraping paragraph text from the source pages. It runs only for the few
// events per analysis cycle that need representative excerpts.
package excerpt

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/normalize"
)

const (
	pageTimeout = 30 * time.Second

	// Snippets at least this long already carry enough text for
	// perspective excerpts; fetching the page again buys nothing.
	minUsefulSnippet = 200

	maxSnippetLen = 2000

	// Per-event page fetch cap.
	maxPagesPerEvent = 6
)

// Extractor scrapes article pages for body text.
type Extractor struct {
	articles *models.ArticleStore
}

// NewExtractor creates an extractor writing through the article store.
func NewExtractor(articles *models.ArticleStore) *Extractor {
	return &Extractor{articles: articles}
}

// EnrichEvent fetches page text for the event members whose snippets are
// too thin to quote. Returns how many articles were enriched. Page-level
// failures are logged and skipped.
func (x *Extractor) EnrichEvent(ctx context.Context, members []models.Article) int {
	enriched := 0
	fetched := 0

	for i := range members {
		if ctx.Err() != nil || fetched >= maxPagesPerEvent {
			break
		}
		a := &members[i]
		if len(a.Snippet) >= minUsefulSnippet {
			continue
		}

		fetched++
		text, err := x.fetchPage(ctx, a.URL)
		if err != nil {
			slog.Warn("excerpt: fetch page", "url", a.URL, "err", err)
			continue
		}
		if len(text) < minUsefulSnippet {
			continue
		}

		snippet := normalize.TruncateAtSentence(text, maxSnippetLen)
		if err := x.articles.UpdateSnippet(ctx, a.ID, snippet); err != nil {
			slog.Error("excerpt: update snippet", "article", a.ID, "err", err)
			continue
		}
		a.Snippet = snippet
		enriched++
	}
	return enriched
}

// fetchPage collects the paragraph text of one article page. The request
// timeout bounds the visit; cancellation is checked between pages.
func (x *Extractor) fetchPage(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.UserAgent("veritas-news/1.0"),
	)
	c.SetRequestTimeout(pageTimeout)

	var paragraphs []string
	c.OnHTML("article p, main p, div.article-body p", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.Text)
		if len(text) >= 60 {
			paragraphs = append(paragraphs, text)
		}
	})
	// Fallback for pages without semantic containers.
	c.OnHTML("body p", func(e *colly.HTMLElement) {
		if len(paragraphs) > 0 {
			return
		}
		text := strings.TrimSpace(e.Text)
		if len(text) >= 120 {
			paragraphs = append(paragraphs, text)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	c.Wait()

	return strings.Join(paragraphs, " "), nil
}
