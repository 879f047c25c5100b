package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-news/veritas/internal/models"
)

func event(id int64, category string, importance, truth float64, sources, articles int, age time.Duration, now time.Time) models.Event {
	seen := now.Add(-age)
	return models.Event{
		ID:              id,
		Category:        category,
		ImportanceScore: importance,
		TruthScore:      truth,
		UniqueSources:   sources,
		ArticlesCount:   articles,
		LastSeen:        &seen,
	}
}

func TestRecencyMonotoneDecay(t *testing.T) {
	assert.Equal(t, 1.0, Recency(0))
	assert.Equal(t, 1.0, Recency(4))

	prev := Recency(4.001)
	assert.Less(t, prev, 1.0)
	for _, h := range []float64{6, 12, 24, 48, 96, 168} {
		cur := Recency(h)
		assert.Less(t, cur, prev, "recency must strictly decrease past the fresh window (h=%v)", h)
		prev = cur
	}
	assert.Greater(t, Recency(1000), 0.0, "decay never reaches zero")
}

func TestHoursOld(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	seen := now.Add(-3 * time.Hour)
	assert.InDelta(t, 3, HoursOld(&models.Event{LastSeen: &seen}, now), 1e-9)

	future := now.Add(time.Hour)
	assert.Zero(t, HoursOld(&models.Event{LastSeen: &future}, now))

	assert.Greater(t, HoursOld(&models.Event{}, now), 500.0, "missing last_seen ranks as very old")
}

func TestMomentum(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	weights := tierWeights[SectionAll]

	fresh := event(1, "politics", 50, 80, 5, 6, 2*time.Hour, now)
	idle := event(2, "politics", 50, 80, 5, 6, 2*time.Hour, now)
	idle.ArticlesCount = 2

	assert.Greater(t, BaseScore(&fresh, weights, now), BaseScore(&idle, weights, now),
		"active fresh events get the momentum boost")

	stale := event(3, "politics", 50, 80, 5, 0, 100*time.Hour, now)
	staleRef := event(4, "politics", 50, 80, 5, 1, 100*time.Hour, now)
	assert.Less(t, BaseScore(&stale, weights, now), BaseScore(&staleRef, weights, now),
		"stale events with no recent articles are dampened")
}

func TestRankFresherBeatsStale(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		event(1, "politics", 60, 80, 5, 3, 90*time.Hour, now),
		event(2, "politics", 60, 80, 5, 3, 1*time.Hour, now),
	}
	ranked := Rank(events, SectionConfirmed, now)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].ID)
}

func TestRankDoesNotModifyInput(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		event(1, "politics", 10, 50, 2, 1, 80*time.Hour, now),
		event(2, "health", 90, 95, 8, 9, 1*time.Hour, now),
	}
	Rank(events, SectionAll, now)
	assert.Equal(t, int64(1), events[0].ID, "input order is preserved")
}

func TestRankDiversityBoost(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Eleven near-identical politics events drown one slightly weaker
	// health event; the diversity pass lifts the odd category.
	var events []models.Event
	for i := int64(1); i <= 11; i++ {
		e := event(i, "politics", 70, 85, 6, 6, 2*time.Hour, now)
		events = append(events, e)
	}
	health := event(12, "health", 60, 85, 6, 6, 2*time.Hour, now)
	events = append(events, health)

	ranked := Rank(events, SectionAll, now)
	require.Len(t, ranked, 12)

	pos := -1
	for i, e := range ranked {
		if e.ID == 12 {
			pos = i
		}
	}
	require.NotEqual(t, -1, pos)
	assert.Less(t, pos, 11, "underrepresented category must not rank last")
}

func TestRankDeterministicTies(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	seen := now.Add(-2 * time.Hour)

	twin := func(id int64) models.Event {
		return models.Event{
			ID: id, Category: "politics", ImportanceScore: 50,
			TruthScore: 80, UniqueSources: 4, ArticlesCount: 2, LastSeen: &seen,
		}
	}
	events := []models.Event{twin(9), twin(3), twin(7)}

	first := Rank(events, SectionAll, now)
	assert.Equal(t, int64(3), first[0].ID, "equal scores break by id ascending")
	for i := 0; i < 5; i++ {
		again := Rank(events, SectionAll, now)
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID)
		}
	}
}

func TestRankUnknownSectionFallsBack(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	events := []models.Event{event(1, "politics", 50, 80, 4, 2, time.Hour, now)}
	assert.Len(t, Rank(events, "bogus", now), 1)
}
