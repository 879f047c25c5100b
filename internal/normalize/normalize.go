// Package normalize turns RawArticle batches into persisted Article rows:
// language filtering, URL canonicalization, dedup, entity extraction, and
// snippet truncation, in that order.
package normalize

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pemistahl/lingua-go"

	"github.com/veritas-news/veritas/internal/fetch"
	"github.com/veritas-news/veritas/internal/models"
)

const (
	maxSnippetLen = 2000
	maxSummaryLen = 300

	// Same-domain titles ingested inside this window are checked for
	// near-duplicates.
	titleDedupWindow = 48 * time.Hour

	titleDedupThreshold = 0.90
)

// Pipeline normalizes and persists fetched articles.
type Pipeline struct {
	articles *models.ArticleStore
	detector lingua.LanguageDetector
}

// NewPipeline builds the pipeline. The language detector is restricted to a
// small candidate set; a full 75-language model costs too much memory for
// what is a binary keep-or-drop decision.
func NewPipeline(articles *models.ArticleStore) *Pipeline {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
			lingua.Russian,
			lingua.Chinese,
			lingua.Arabic,
			lingua.Japanese,
		).
		WithLowAccuracyMode().
		Build()
	return &Pipeline{articles: articles, detector: detector}
}

// Result summarizes one normalize run.
type Result struct {
	Inserted     int
	SkippedDup   int
	SkippedLang  int
	SkippedNoise int
	Failed       int
}

// Run normalizes a batch and inserts the survivors. Each insert is atomic;
// a failing row is logged and skipped, never aborting the batch.
func (p *Pipeline) Run(ctx context.Context, batch []fetch.RawArticle) Result {
	var res Result

	// Titles already accepted this run, per domain, so intra-batch
	// duplicates are caught before they reach the store.
	acceptedTitles := make(map[string][]string)

	for _, raw := range batch {
		if ctx.Err() != nil {
			break
		}

		article, skip := p.prepare(ctx, raw, acceptedTitles, &res)
		if skip {
			continue
		}

		err := p.articles.Insert(ctx, article)
		switch {
		case errors.Is(err, models.ErrDuplicateURL):
			res.SkippedDup++
		case err != nil:
			slog.Error("normalize: insert", "url", article.URL, "err", err)
			res.Failed++
		default:
			acceptedTitles[article.SourceDomain] = append(acceptedTitles[article.SourceDomain], article.Title)
			res.Inserted++
		}
	}
	return res
}

// prepare runs the per-article filter chain. It returns skip=true when the
// article should not be persisted, bumping the matching counter.
func (p *Pipeline) prepare(ctx context.Context, raw fetch.RawArticle, acceptedTitles map[string][]string, res *Result) (*models.Article, bool) {
	title := CleanText(raw.Title)
	if title == "" || IsNoiseTitle(title) {
		res.SkippedNoise++
		return nil, true
	}

	summary := CleanText(raw.Summary)
	snippet := CleanText(raw.Snippet)

	// Language filter on the richest text available.
	sample := title
	if summary != "" {
		sample = title + " " + summary
	}
	if lang, ok := p.detector.DetectLanguageOf(sample); ok && lang != lingua.English {
		res.SkippedLang++
		return nil, true
	}

	canonical := CanonicalizeURL(raw.URL)
	if canonical == "" {
		res.Failed++
		return nil, true
	}

	exists, err := p.articles.ExistsByURL(ctx, canonical)
	if err != nil {
		slog.Error("normalize: url check", "url", canonical, "err", err)
		res.Failed++
		return nil, true
	}
	if exists {
		res.SkippedDup++
		return nil, true
	}

	if p.isDuplicateTitle(ctx, raw.SourceDomain, title, acceptedTitles) {
		res.SkippedDup++
		return nil, true
	}

	entities := ExtractEntities(title + " " + summary)

	publishedAt := raw.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	return &models.Article{
		URL:             canonical,
		SourceDomain:    strings.ToLower(raw.SourceDomain),
		Title:           title,
		Summary:         TruncateAtSentence(summary, maxSummaryLen),
		Snippet:         TruncateAtSentence(snippet, maxSnippetLen),
		PublishedAt:     publishedAt.UTC(),
		IngestedAt:      time.Now().UTC(),
		Language:        "en",
		Entities:        entities,
		FactCheckStatus: models.FactCheckUnchecked,
	}, false
}

// isDuplicateTitle checks the new title against same-domain titles from the
// last 48 hours, plus titles accepted earlier in this batch.
func (p *Pipeline) isDuplicateTitle(ctx context.Context, domain, title string, acceptedTitles map[string][]string) bool {
	for _, prev := range acceptedTitles[domain] {
		if TitleSimilarity(title, prev) > titleDedupThreshold {
			return true
		}
	}

	since := time.Now().Add(-titleDedupWindow)
	recent, err := p.articles.RecentTitlesBySource(ctx, domain, since)
	if err != nil {
		slog.Warn("normalize: recent titles", "domain", domain, "err", err)
		return false
	}
	for _, prev := range recent {
		if TitleSimilarity(title, prev) > titleDedupThreshold {
			return true
		}
	}
	return false
}
