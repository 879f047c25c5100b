package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips tracking params",
			in:   "https://example.com/story?utm_source=x&utm_medium=social&id=7",
			want: "https://example.com/story?id=7",
		},
		{
			name: "strips fbclid and gclid",
			in:   "https://example.com/a?fbclid=abc&gclid=def",
			want: "https://example.com/a",
		},
		{
			name: "lowercases host and strips fragment",
			in:   "https://Example.COM/News/Story#section-2",
			want: "https://example.com/News/Story",
		},
		{
			name: "strips trailing slash",
			in:   "https://example.com/story/",
			want: "https://example.com/story",
		},
		{
			name: "root path survives",
			in:   "https://example.com/",
			want: "https://example.com/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalizeURL(tt.in))
		})
	}
}

func TestCanonicalizeURLIdempotent(t *testing.T) {
	urls := []string{
		"https://Example.com/Story/?utm_campaign=z&b=2&a=1#frag",
		"http://news.site.co.uk/world/article-123/",
		"https://example.com/?ref=homepage",
	}
	for _, u := range urls {
		once := CanonicalizeURL(u)
		assert.Equal(t, once, CanonicalizeURL(once), "canonicalization must be idempotent for %q", u)
	}
}

func TestTitleSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TitleSimilarity("Earthquake hits Tokyo", "earthquake hits TOKYO!"))
	assert.Greater(t, TitleSimilarity(
		"Magnitude 7.1 earthquake strikes off Japan coast",
		"Magnitude 7.1 earthquake strikes Japan coast",
	), 0.8)
	assert.Less(t, TitleSimilarity("Earthquake hits Tokyo", "Parliament passes budget bill"), 0.1)
	assert.Zero(t, TitleSimilarity("", "anything"))
}

func TestTruncateAtSentence(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one is longer than needed."
	got := TruncateAtSentence(text, 50)
	assert.Equal(t, "First sentence here. Second sentence follows.", got)

	// No sentence boundary inside the limit: cut at a word boundary.
	got = TruncateAtSentence("one two three four five", 13)
	assert.Equal(t, "one two", got)

	// Short text passes through.
	assert.Equal(t, "short", TruncateAtSentence("short", 100))
}

func TestExtractEntities(t *testing.T) {
	entities := ExtractEntities("President Maria Santos met United Nations officials in New York after the flooding")
	assert.Contains(t, entities, "President Maria Santos")
	assert.Contains(t, entities, "United Nations")
	assert.Contains(t, entities, "New York")

	// Textual order preserved.
	assert.Less(t,
		indexOf(entities, "President Maria Santos"),
		indexOf(entities, "New York"))
}

// Adjectives that open proper names must survive; sentence-position
// function words must not.
func TestExtractEntitiesLeadingWords(t *testing.T) {
	entities := ExtractEntities("Cyclone nears New Zealand as New Delhi sends aid")
	assert.Contains(t, entities, "New Zealand")
	assert.Contains(t, entities, "New Delhi")

	entities = ExtractEntities("The White House issued a statement")
	assert.Contains(t, entities, "White House")
	assert.NotContains(t, entities, "The White House")
}

func TestExtractEntitiesCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("Uniqueword")
		b.WriteString(string(rune('A' + i%26)))
		b.WriteString(string(rune('a' + i/26)))
		b.WriteString(" and ")
	}
	entities := ExtractEntities(b.String())
	assert.LessOrEqual(t, len(entities), 50)
}

func TestIsNoiseTitle(t *testing.T) {
	assert.True(t, IsNoiseTitle("Sign up for our morning newsletter"))
	assert.True(t, IsNoiseTitle("LIVE UPDATES: election night coverage"))
	assert.False(t, IsNoiseTitle("Earthquake strikes northern Chile"))
}

func TestCleanText(t *testing.T) {
	got := CleanText("<p>Officials said &quot;the situation is  stable&quot;.</p>\n<p>More follows.</p>")
	assert.Equal(t, `Officials said "the situation is stable". More follows.`, got)
}

func indexOf(s []string, v string) int {
	for i, e := range s {
		if e == v {
			return i
		}
	}
	return -1
}
