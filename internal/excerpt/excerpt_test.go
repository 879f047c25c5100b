package excerpt

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veritas-news/veritas/internal/models"
)

func TestEnrichEventCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := NewExtractor(nil)
	members := []models.Article{
		{ID: 1, URL: "https://example.com/a"},
		{ID: 2, URL: "https://example.com/b"},
	}
	assert.Zero(t, x.EnrichEvent(ctx, members), "cancelled context must fetch nothing")
}

func TestEnrichEventSkipsRichSnippets(t *testing.T) {
	rich := strings.Repeat("x", minUsefulSnippet)
	x := NewExtractor(nil)
	members := []models.Article{
		{ID: 1, URL: "https://example.com/a", Snippet: rich},
		{ID: 2, URL: "https://example.com/b", Snippet: rich},
	}
	assert.Zero(t, x.EnrichEvent(context.Background(), members),
		"members with enough body text are never re-fetched")
}
