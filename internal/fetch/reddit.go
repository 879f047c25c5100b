package fetch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// redditFeeds are the news subreddits mined for early signals. Reddit posts
// frequently link out; the outbound link's domain is what we record.
var redditFeeds = []string{
	"https://www.reddit.com/r/worldnews/new/.rss",
	"https://www.reddit.com/r/news/new/.rss",
	"https://www.reddit.com/r/geopolitics/new/.rss",
}

// Reddit fetches the new-post feeds of a fixed set of news subreddits.
type Reddit struct {
	parser *gofeed.Parser
	feeds  []string
}

// NewReddit creates the Reddit fetcher.
func NewReddit() *Reddit {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &Reddit{parser: p, feeds: redditFeeds}
}

func (r *Reddit) Name() string { return "reddit" }

// Fetch pulls each subreddit feed once per window. Self-posts and posts
// linking back to reddit itself are dropped; everything else is attributed
// to the linked domain.
func (r *Reddit) Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error) {
	var out []RawArticle
	failures := 0

	for _, feedURL := range r.feeds {
		if ctx.Err() != nil {
			break
		}
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		feed, err := r.parser.ParseURLWithContext(feedURL, callCtx)
		cancel()
		if err != nil {
			slog.Warn("fetch/reddit: feed failed", "feed", feedURL, "err", err)
			failures++
			continue
		}

		for _, item := range feed.Items {
			ts := itemTime(item)
			if !inWindow(ts, window) {
				continue
			}
			link := outboundLink(item)
			if link == "" {
				continue
			}
			domain := domainOf(link)
			if domain == "" || strings.HasSuffix(domain, "reddit.com") || strings.HasSuffix(domain, "redd.it") {
				continue
			}
			out = append(out, RawArticle{
				URL:          link,
				SourceDomain: domain,
				Title:        strings.TrimSpace(item.Title),
				PublishedAt:  ts,
			})
		}
	}

	if failures == len(r.feeds) && len(r.feeds) > 0 {
		return nil, ErrSourceUnavailable
	}
	return out, nil
}

// outboundLink extracts the external URL a reddit post points at. Reddit's
// Atom feed puts the comments page in item.Link and embeds the outbound
// link inside the rendered content.
func outboundLink(item *gofeed.Item) string {
	content := item.Content
	if content == "" {
		content = item.Description
	}
	const marker = `<a href="`
	for {
		idx := strings.Index(content, marker)
		if idx == -1 {
			return ""
		}
		rest := content[idx+len(marker):]
		end := strings.IndexByte(rest, '"')
		if end == -1 {
			return ""
		}
		href := rest[:end]
		if !strings.Contains(href, "reddit.com") && strings.HasPrefix(href, "http") {
			return href
		}
		content = rest[end:]
	}
}
