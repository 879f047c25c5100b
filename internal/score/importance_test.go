package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-news/veritas/internal/models"
)

func TestNormalizedEntropy(t *testing.T) {
	assert.InDelta(t, 1.0, normalizedEntropy([]float64{1, 1, 1}), 1e-9, "uniform distribution is maximal")
	assert.Zero(t, normalizedEntropy([]float64{1, 0, 0}), "concentrated distribution is minimal")
	assert.Zero(t, normalizedEntropy([]float64{0, 0, 0}))
	assert.Zero(t, normalizedEntropy([]float64{1}))
}

func TestCompass(t *testing.T) {
	long := make([]byte, deepSnippetLen)
	for i := range long {
		long[i] = 'x'
	}
	members := []models.Article{
		{SourceDomain: "theguardian.com", Snippet: string(long)},
		{SourceDomain: "foxnews.com"},
		{SourceDomain: "xinhuanet.com"},
		{SourceDomain: "aljazeera.com"},
	}
	compass := Compass(members)
	require.NotNil(t, compass)

	// Each axis is a distribution over the member count.
	for _, axis := range []map[string]float64{
		compass.Geographic, compass.Political, compass.Tone, compass.Detail,
	} {
		var sum float64
		for _, v := range axis {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}

	assert.InDelta(t, 0.5, compass.Geographic["western"], 1e-9)
	assert.InDelta(t, 0.25, compass.Geographic["eastern"], 1e-9)
	assert.InDelta(t, 0.25, compass.Geographic["global_south"], 1e-9)
	assert.InDelta(t, 0.25, compass.Detail["deep"], 1e-9)

	assert.Nil(t, Compass(nil))
}

func TestInternationalCoverage(t *testing.T) {
	members := []models.Article{
		{SourceDomain: "bbc.co.uk"},
		{SourceDomain: "theguardian.com"},
		{SourceDomain: "nhk.or.jp"},
	}
	coverage := InternationalCoverage(members)
	assert.Equal(t, 2, coverage["GB"])
	assert.Equal(t, 1, coverage["JP"])
}

func TestImportanceGrowthRaisesScore(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	e := &models.Event{GeoDiversity: 0.5, CoherenceScore: 80}

	old := make([]models.Article, 6)
	for i := range old {
		old[i] = models.Article{SourceDomain: "reuters.com", IngestedAt: now.Add(-10 * time.Hour)}
	}
	fresh := make([]models.Article, 6)
	for i := range fresh {
		fresh[i] = models.Article{SourceDomain: "reuters.com", IngestedAt: now.Add(-time.Hour)}
	}
	compass := Compass(old)

	assert.Greater(t,
		Importance(e, fresh, compass, now),
		Importance(e, old, compass, now),
		"recent ingestion growth must raise importance")
}

func TestImportanceBounded(t *testing.T) {
	now := time.Now()
	e := &models.Event{GeoDiversity: 1, CoherenceScore: 100}
	members := make([]models.Article, 20)
	for i := range members {
		members[i] = models.Article{SourceDomain: "reuters.com", IngestedAt: now}
	}
	got := Importance(e, members, Compass(members), now)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
}
