package fetch

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/story", "example.com"},
		{"https://News.BBC.co.uk/world/article", "news.bbc.co.uk"},
		{"https://example.com:8080/a", "example.com"},
		{"not a url", ""},
		{"/relative/path", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domainOf(tt.in), "url %q", tt.in)
	}
}

func TestInWindow(t *testing.T) {
	now := time.Now()

	assert.True(t, inWindow(now.Add(-10*time.Minute), time.Hour))
	assert.False(t, inWindow(now.Add(-2*time.Hour), time.Hour))
	assert.False(t, inWindow(time.Time{}, time.Hour))

	// Small clock skew into the future is tolerated; large is not.
	assert.True(t, inWindow(now.Add(2*time.Minute), time.Hour))
	assert.False(t, inWindow(now.Add(30*time.Minute), time.Hour))
}

func TestOutboundLink(t *testing.T) {
	item := &gofeed.Item{
		Content: `submitted by <a href="https://www.reddit.com/user/someone">someone</a> ` +
			`<a href="https://example.com/breaking-story">[link]</a> ` +
			`<a href="https://www.reddit.com/r/worldnews/comments/abc">[comments]</a>`,
	}
	assert.Equal(t, "https://example.com/breaking-story", outboundLink(item))
}

func TestOutboundLinkNoExternal(t *testing.T) {
	item := &gofeed.Item{
		Content: `<a href="https://www.reddit.com/r/news/comments/xyz">[comments]</a>`,
	}
	assert.Empty(t, outboundLink(item))

	assert.Empty(t, outboundLink(&gofeed.Item{Content: "plain text, no links"}))
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register(NewRSS())
	r.Register(NewReddit())
	r.Register(nil)
	if f := NewNewsAPI(""); f != nil { // no key: constructor disables itself
		r.Register(f)
	}

	assert.Equal(t, []string{"reddit", "rss"}, r.Names())
	assert.Nil(t, r.Get("newsapi"))
	assert.NotNil(t, r.Get("rss"))
}

func TestOutboundLinkFallsBackToDescription(t *testing.T) {
	item := &gofeed.Item{
		Description: `<a href="https://news.example.org/report">[link]</a>`,
	}
	assert.Equal(t, "https://news.example.org/report", outboundLink(item))
}
