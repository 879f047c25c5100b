package handlers

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/veritas-news/veritas/internal/models"
)

// feedWindow is how far back the verified feed reaches.
const feedWindow = 48 * time.Hour

// FeedHandler serves the public RSS feed of verified events.
type FeedHandler struct {
	Events   *models.EventStore
	Articles *models.ArticleStore
}

// ServeVerified serves GET /feeds/verified.xml: confirmed and developing
// events from the last 48 hours as RSS 2.0.
func (h *FeedHandler) ServeVerified(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.ListVerifiedSince(r.Context(), time.Now().Add(-feedWindow))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", requestScheme(r), r.Host)
	selfURL := baseURL + "/feeds/verified.xml"

	var items []rssItem
	lastBuild := time.Time{}
	for _, e := range events {
		if e.LastSeen == nil {
			continue
		}
		pubDate := e.LastSeen.UTC()
		if pubDate.After(lastBuild) {
			lastBuild = pubDate
		}

		link := fmt.Sprintf("%s/events/%d", baseURL, e.ID)
		items = append(items, rssItem{
			Title:   e.Summary,
			Link:    link,
			Desc:    h.describe(r, &e),
			PubDate: pubDate.Format(time.RFC1123Z),
			GUID:    rssGUID{IsPermaLink: "true", Value: link},
			Category: map[string]string{
				models.TierConfirmed:  "Confirmed",
				models.TierDeveloping: "Developing",
			}[e.ConfidenceTier],
		})
	}
	if lastBuild.IsZero() {
		lastBuild = time.Now().UTC()
	}

	// Conditional GET on the newest item.
	w.Header().Set("Last-Modified", lastBuild.Format(http.TimeFormat))
	if ifMod := r.Header.Get("If-Modified-Since"); ifMod != "" {
		if t, err := http.ParseTime(ifMod); err == nil && !lastBuild.After(t) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Cache-Control", "public, max-age=900")

	rss := rssFeed{
		Version: "2.0",
		NSAtom:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       "Veritas — Verified Events",
			Link:        baseURL,
			Description: "Confirmed and developing news events from the last 48 hours",
			Language:    "en",
			LastBuild:   lastBuild.Format(time.RFC1123Z),
			TTL:         900 / 60,
			AtomLink: rssAtomLink{
				Href: selfURL,
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(rss); err != nil {
		slog.Error("feed: encode rss", "err", err)
	}
}

// describe builds the fixed-format item description. The top source is the
// most frequent member domain, alphabetical on ties.
func (h *FeedHandler) describe(r *http.Request, e *models.Event) string {
	topSource := "unknown"
	if members, err := h.Articles.ListByEvent(r.Context(), e.ID); err == nil && len(members) > 0 {
		counts := make(map[string]int)
		for _, a := range members {
			counts[a.SourceDomain]++
		}
		domains := make([]string, 0, len(counts))
		for d := range counts {
			domains = append(domains, d)
		}
		sort.Slice(domains, func(i, j int) bool {
			if counts[domains[i]] != counts[domains[j]] {
				return counts[domains[i]] > counts[domains[j]]
			}
			return domains[i] < domains[j]
		})
		topSource = domains[0]
	}

	return fmt.Sprintf("Event verified with confidence score %s from %d sources including %s",
		strings.TrimSuffix(fmt.Sprintf("%.1f", e.TruthScore), ".0"), e.UniqueSources, topSource)
}

// RSS 2.0 XML envelope.

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	NSAtom  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	Description string      `xml:"description"`
	Language    string      `xml:"language"`
	LastBuild   string      `xml:"lastBuildDate"`
	TTL         int         `xml:"ttl"`
	AtomLink    rssAtomLink `xml:"atom:link"`
	Items       []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title    string  `xml:"title"`
	Link     string  `xml:"link"`
	Desc     string  `xml:"description"`
	PubDate  string  `xml:"pubDate"`
	GUID     rssGUID `xml:"guid"`
	Category string  `xml:"category"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}
