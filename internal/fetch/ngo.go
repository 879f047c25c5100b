package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ngoFeeds are the official and humanitarian primary-evidence feeds.
var ngoFeeds = []string{
	"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_hour.atom",
	"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/4.5_day.atom",
	"https://www.who.int/rss-feeds/news-english.xml",
	"https://reliefweb.int/updates/rss.xml",
	"https://www.unocha.org/rss.xml",
}

const firmsEndpoint = "https://firms.modaps.eosdis.nasa.gov/api/area/csv"

// NGOGov fetches official, NGO, and scientific agency feeds. These sources
// drive the primary-evidence and official-match components of the truth
// score. The NASA FIRMS integration is optional and keyed.
type NGOGov struct {
	parser   *gofeed.Parser
	feeds    []string
	firmsKey string
}

// NewNGOGov creates the NGO/Gov fetcher. firmsKey may be empty, which
// disables the FIRMS call only.
func NewNGOGov(firmsKey string) *NGOGov {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &NGOGov{parser: p, feeds: ngoFeeds, firmsKey: firmsKey}
}

func (n *NGOGov) Name() string { return "ngo_gov" }

// Fetch walks the official feed list, then appends the daily FIRMS fire
// summary when a key is configured.
func (n *NGOGov) Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error) {
	var out []RawArticle
	failures := 0

	for _, feedURL := range n.feeds {
		if ctx.Err() != nil {
			break
		}
		items, err := parseFeed(ctx, n.parser, feedURL, window)
		if err != nil {
			slog.Warn("fetch/ngo_gov: feed failed", "feed", feedURL, "err", err)
			failures++
			continue
		}
		out = append(out, items...)
	}

	if n.firmsKey != "" {
		if item, err := n.fetchFIRMS(ctx); err != nil {
			slog.Warn("fetch/ngo_gov: firms failed", "err", err)
		} else if item != nil {
			out = append(out, *item)
		}
	}

	if failures == len(n.feeds) && len(n.feeds) > 0 {
		return nil, ErrSourceUnavailable
	}
	return out, nil
}

// fetchFIRMS summarizes the last day of global VIIRS fire detections into a
// single daily record. The URL carries the date so the canonical-URL dedup
// admits exactly one row per day.
func (n *NGOGov) fetchFIRMS(ctx context.Context) (*RawArticle, error) {
	reqURL := fmt.Sprintf("%s/%s/VIIRS_SNPP_NRT/world/1", firmsEndpoint, n.firmsKey)

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	// Header line plus one CSV row per detection.
	detections := strings.Count(string(body), "\n") - 1
	if detections <= 0 {
		return nil, nil
	}

	day := time.Now().UTC().Format("2006-01-02")
	return &RawArticle{
		URL:          "https://firms.modaps.eosdis.nasa.gov/map/#d:" + day,
		SourceDomain: "nasa.gov",
		Title:        fmt.Sprintf("NASA FIRMS: %d active fire detections worldwide (%s)", detections, day),
		Summary:      "Daily global VIIRS satellite fire detection summary from NASA FIRMS.",
		PublishedAt:  time.Now().UTC(),
	}, nil
}
