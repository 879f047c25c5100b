package handlers

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSSFeedMarshals(t *testing.T) {
	feed := rssFeed{
		Version: "2.0",
		NSAtom:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       "Veritas — Verified Events",
			Link:        "http://example.com",
			Description: "Confirmed and developing news events from the last 48 hours",
			Language:    "en",
			LastBuild:   "Thu, 20 Aug 2026 12:00:00 +0000",
			TTL:         15,
			AtomLink: rssAtomLink{
				Href: "http://example.com/feeds/verified.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: []rssItem{
				{
					Title:    "Magnitude 7.1 earthquake strikes off Japan coast",
					Link:     "http://example.com/events/42",
					Desc:     "Event verified with confidence score 92.5 from 8 sources including reuters.com",
					PubDate:  "Thu, 20 Aug 2026 11:30:00 +0000",
					GUID:     rssGUID{IsPermaLink: "true", Value: "http://example.com/events/42"},
					Category: "Confirmed",
				},
			},
		},
	}

	out, err := xml.Marshal(feed)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<rss version="2.0"`)
	assert.Contains(t, s, `xmlns:atom="http://www.w3.org/2005/Atom"`)
	assert.Contains(t, s, "<channel>")
	assert.Contains(t, s, "<item>")
	assert.Contains(t, s, `<guid isPermaLink="true">http://example.com/events/42</guid>`)
	assert.Contains(t, s, "<category>Confirmed</category>")
	assert.Contains(t, s, "<ttl>15</ttl>")

	// Round-trips as valid XML.
	var back rssFeed
	require.NoError(t, xml.Unmarshal(out, &back))
	require.Len(t, back.Channel.Items, 1)
	assert.Equal(t, "Magnitude 7.1 earthquake strikes off Japan coast", back.Channel.Items[0].Title)
}
