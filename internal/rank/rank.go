// Package rank orders candidate events for a presentation section. The
// ranker is pure over its input slice: decay, quality, momentum, and a
// category diversity pass, with deterministic tie-breaking.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/veritas-news/veritas/internal/models"
)

// Section tags accepted by Rank.
const (
	SectionConfirmed  = "confirmed"
	SectionDeveloping = "developing"
	SectionConflicts  = "conflicts"
	SectionAll        = "all"
)

// tierWeights are the per-section weights over (aged importance, quality,
// recency).
var tierWeights = map[string][3]float64{
	SectionConfirmed:  {0.20, 0.20, 0.60},
	SectionDeveloping: {0.20, 0.15, 0.65},
	SectionConflicts:  {0.40, 0.15, 0.45},
	SectionAll:        {0.15, 0.20, 0.65},
}

// Decay and momentum constants.
const (
	importanceHalfLifeHours = 168.0
	recencyFreshHours       = 4.0
	recencyDecayHours       = 48.0
	recencyDecayBase        = 0.8
)

type scored struct {
	event    *models.Event
	category string
	base     float64
	final    float64
}

// Rank orders events for a section, highest final score first. The input
// slice is not modified. Unknown sections fall back to the "all" weights.
func Rank(events []models.Event, section string, now time.Time) []models.Event {
	weights, ok := tierWeights[section]
	if !ok {
		weights = tierWeights[SectionAll]
	}

	items := make([]scored, len(events))
	for i := range events {
		e := &events[i]
		base := BaseScore(e, weights, now)
		items[i] = scored{event: e, category: e.Category, base: base, final: base}
	}

	sortScored(items, func(s scored) float64 { return s.base })
	applyDiversity(items)
	sortScored(items, func(s scored) float64 { return s.final })

	out := make([]models.Event, len(items))
	for i, item := range items {
		out[i] = *item.event
	}
	return out
}

// BaseScore computes the pre-diversity score: weighted dot product of aged
// importance, quality, and recency, times the momentum multiplier.
func BaseScore(e *models.Event, weights [3]float64, now time.Time) float64 {
	hoursOld := HoursOld(e, now)

	aged := e.ImportanceScore * math.Exp(-hoursOld/importanceHalfLifeHours)
	quality := 0.6*(e.TruthScore/100) + 0.4*math.Min(float64(e.UniqueSources)/5, 1)
	recency := Recency(hoursOld)

	base := weights[0]*(aged/100) + weights[1]*quality + weights[2]*recency
	return base * momentum(e, hoursOld)
}

// Recency is the smooth monotonic freshness decay.
func Recency(hoursOld float64) float64 {
	if hoursOld <= recencyFreshHours {
		return 1.0
	}
	return recencyDecayBase * math.Exp(-(hoursOld-recencyFreshHours)/recencyDecayHours)
}

// HoursOld measures hours since the event was last updated. Events that
// never recorded a last_seen rank as very old.
func HoursOld(e *models.Event, now time.Time) float64 {
	if e.LastSeen == nil {
		return importanceHalfLifeHours * 4
	}
	hours := now.Sub(*e.LastSeen).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

// momentum boosts fresh active stories and dampens stale empty ones.
func momentum(e *models.Event, hoursOld float64) float64 {
	switch {
	case hoursOld <= 24 && e.ArticlesCount >= 5:
		return 1.08
	case hoursOld > 72 && e.ArticlesCount == 0:
		return 0.90
	default:
		return 1.00
	}
}

// applyDiversity adjusts final scores so one category cannot monopolize the
// page. Boost rules depend on the category mix of the current top 10.
func applyDiversity(items []scored) {
	if len(items) < 2 {
		return
	}

	topN := 10
	if len(items) < topN {
		topN = len(items)
	}
	topCategories := make(map[string]int)
	for i := 0; i < topN; i++ {
		topCategories[items[i].category]++
	}
	leadCategory := items[0].category

	for i := range items {
		boost := 0.0
		switch {
		case i < 3:
			if items[i].category != leadCategory {
				boost = 0.03
			}
		case i < 20:
			switch topCategories[items[i].category] {
			case 0:
				boost = 0.10
			case 1:
				boost = 0.05
			}
		default:
			if topCategories[items[i].category] == 0 {
				boost = 0.15
			}
		}
		items[i].final = items[i].base * (1 + boost)
	}
}

// sortScored sorts by score descending, breaking ties by last_seen
// descending then id ascending.
func sortScored(items []scored, key func(scored) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki != kj {
			return ki > kj
		}
		li, lj := items[i].event.LastSeen, items[j].event.LastSeen
		switch {
		case li != nil && lj != nil && !li.Equal(*lj):
			return li.After(*lj)
		case li != nil && lj == nil:
			return true
		case li == nil && lj != nil:
			return false
		}
		return items[i].event.ID < items[j].event.ID
	})
}
