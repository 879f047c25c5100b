package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-news/veritas/internal/models"
)

func TestCoherence(t *testing.T) {
	same := []models.Article{
		{Embedding: []float32{1, 0, 0}},
		{Embedding: []float32{1, 0, 0}},
		{Embedding: []float32{1, 0, 0}},
	}
	assert.InDelta(t, 100, Coherence(same), 1e-9)

	split := []models.Article{
		{Embedding: []float32{1, 0, 0}},
		{Embedding: []float32{0, 1, 0}},
	}
	assert.InDelta(t, 0, Coherence(split), 1e-9)

	// Fewer than two embedded members: trivially coherent.
	assert.Equal(t, 100.0, Coherence([]models.Article{{Embedding: []float32{1, 0}}}))
	assert.Equal(t, 100.0, Coherence(nil))
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, models.SeverityNone, SeverityFor(85))
	assert.Equal(t, models.SeverityNone, SeverityFor(70))
	assert.Equal(t, models.SeverityLow, SeverityFor(60))
	assert.Equal(t, models.SeverityMedium, SeverityFor(40))
	assert.Equal(t, models.SeverityHigh, SeverityFor(20))
}

func TestExplainConflictTwoNarratives(t *testing.T) {
	// Two groups around orthogonal directions, with distinct entity sets.
	members := []models.Article{
		{
			SourceDomain: "foxnews.com",
			Title:        "Government crackdown restores order in capital",
			Summary:      "Officials praised the decisive security operation.",
			Entities:     []string{"Interior Ministry", "National Police"},
			Embedding:    []float32{1, 0, 0},
		},
		{
			SourceDomain: "nypost.com",
			Title:        "Security forces end violent unrest",
			Summary:      "The operation was a success, the government said.",
			Entities:     []string{"Interior Ministry"},
			Embedding:    []float32{0.99, 0.05, 0},
		},
		{
			SourceDomain: "theguardian.com",
			Title:        "Protesters beaten as police disperse peaceful march",
			Summary:      "Rights groups condemned the deadly crackdown on civilians.",
			Entities:     []string{"Amnesty International", "Human Rights Watch"},
			Embedding:    []float32{0, 1, 0},
		},
		{
			SourceDomain: "aljazeera.com",
			Title:        "Crackdown on demonstrators leaves dozens injured",
			Summary:      "Witnesses described violent scenes as police attacked the crowd.",
			Entities:     []string{"Amnesty International"},
			Embedding:    []float32{0.05, 0.99, 0},
		},
	}

	expl := ExplainConflict(members)
	require.NotNil(t, expl)
	require.Len(t, expl.Perspectives, 2)

	total := expl.Perspectives[0].ArticleCount + expl.Perspectives[1].ArticleCount
	assert.Equal(t, len(members), total)

	for _, p := range expl.Perspectives {
		assert.Equal(t, 2, p.ArticleCount)
		assert.NotEmpty(t, p.Sources)
		assert.NotEmpty(t, p.RepresentativeTitle)
		assert.NotEmpty(t, p.KeyEntities)
		assert.Contains(t, []string{
			SentimentPositive, SentimentNeutral, SentimentNegative,
		}, p.Sentiment)
	}
	assert.Contains(t, []string{"political", "geographic", "factual", "framing"}, expl.DifferenceType)
}

func TestExplainConflictTooFewMembers(t *testing.T) {
	members := []models.Article{
		{SourceDomain: "bbc.co.uk", Embedding: []float32{1, 0}},
		{SourceDomain: "cnn.com", Embedding: []float32{0, 1}},
		{SourceDomain: "reuters.com"}, // no embedding
	}
	assert.Nil(t, ExplainConflict(members))
}

func TestSplitNarrativesFallback(t *testing.T) {
	// No dense sub-cluster: the farthest pair still seeds a two-way split.
	vectors := [][]float32{
		{1, 0, 0},
		{0.7, 0.7, 0},
		{0, 1, 0},
		{0.5, 0.86, 0},
	}
	a, b := splitNarratives(vectors)
	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
	assert.Equal(t, len(vectors), len(a)+len(b))
}

func TestEntityOverlap(t *testing.T) {
	assert.Equal(t, 1.0, entityOverlap([]string{"UN", "NATO"}, []string{"nato", "un"}))
	assert.Zero(t, entityOverlap([]string{"UN"}, []string{"NATO"}))
	assert.Zero(t, entityOverlap(nil, []string{"NATO"}))
}

func TestExcerptTrimsAtWordBoundary(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "reported "
	}
	got := excerpt(long)
	assert.LessOrEqual(t, len(got), excerptLen+len("…"))
	assert.True(t, strings.HasSuffix(got, "reported…"), "trim must land on a word boundary")

	assert.Equal(t, "short quote", excerpt("short quote"))
}
