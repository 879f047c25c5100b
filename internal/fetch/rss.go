package fetch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// rssFeeds is the curated list of wire and broadsheet feeds for the Tier-2
// standard fetch. Kept small on purpose; breadth comes from GDELT.
var rssFeeds = []string{
	"https://feeds.bbci.co.uk/news/world/rss.xml",
	"https://www.theguardian.com/world/rss",
	"https://rss.nytimes.com/services/xml/rss/nyt/World.xml",
	"https://feeds.washingtonpost.com/rss/world",
	"https://www.aljazeera.com/xml/rss/all.xml",
	"https://www.lemonde.fr/en/rss/une.xml",
	"https://www.spiegel.de/international/index.rss",
	"https://www.abc.net.au/news/feed/51120/rss.xml",
	"https://www.scmp.com/rss/91/feed",
	"https://www.japantimes.co.jp/feed",
	"https://www.thehindu.com/news/international/feeder/default.rss",
}

// RSS fetches the curated feed list with gofeed.
type RSS struct {
	parser *gofeed.Parser
	feeds  []string
}

// NewRSS creates the RSS fetcher over the default feed list.
func NewRSS() *RSS {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &RSS{parser: p, feeds: rssFeeds}
}

func (r *RSS) Name() string { return "rss" }

// Fetch walks the feed list sequentially, one request per feed per window.
// A failed feed is logged and skipped; Fetch only reports SourceUnavailable
// when every feed failed.
func (r *RSS) Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error) {
	var out []RawArticle
	failures := 0

	for _, feedURL := range r.feeds {
		if ctx.Err() != nil {
			break
		}
		items, err := parseFeed(ctx, r.parser, feedURL, window)
		if err != nil {
			slog.Warn("fetch/rss: feed failed", "feed", feedURL, "err", err)
			failures++
			continue
		}
		out = append(out, items...)
	}

	if failures == len(r.feeds) && len(r.feeds) > 0 {
		return nil, ErrSourceUnavailable
	}
	return out, nil
}

// parseFeed fetches one feed and converts its in-window items.
func parseFeed(ctx context.Context, parser *gofeed.Parser, feedURL string, window time.Duration) ([]RawArticle, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	feed, err := parser.ParseURLWithContext(feedURL, callCtx)
	if err != nil {
		return nil, err
	}

	var out []RawArticle
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		ts := itemTime(item)
		if !inWindow(ts, window) {
			continue
		}
		domain := domainOf(item.Link)
		if domain == "" {
			continue
		}
		out = append(out, RawArticle{
			URL:          item.Link,
			SourceDomain: domain,
			Title:        strings.TrimSpace(item.Title),
			Summary:      strings.TrimSpace(item.Description),
			Snippet:      strings.TrimSpace(item.Content),
			PublishedAt:  ts,
		})
	}
	return out, nil
}

// itemTime picks the best timestamp a feed item carries.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}
