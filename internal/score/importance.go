package score

import (
	"math"
	"time"

	"github.com/veritas-news/veritas/internal/models"
)

// Importance score component weights.
const (
	weightGrowth       = 0.35
	weightImportGeo    = 0.25
	weightPolDiversity = 0.20
	weightSalience     = 0.20
)

// growthWindow is the recent-ingestion window for the growth component.
const growthWindow = 4 * time.Hour

// growthSaturation is the recent article count at which growth maxes out.
const growthSaturation = 10.0

// Importance computes the 0-100 importance score from growth, geographic
// spread, political diversity, and coherence-adjusted salience.
func Importance(e *models.Event, members []models.Article, compass *models.BiasCompass, now time.Time) float64 {
	recent := 0
	for _, a := range members {
		if a.IngestedAt.After(now.Add(-growthWindow)) {
			recent++
		}
	}
	growth := math.Min(float64(recent)/growthSaturation, 1)

	salience := math.Min(float64(len(members))/10, 1) * e.CoherenceScore / 100

	sum := weightGrowth*growth +
		weightImportGeo*e.GeoDiversity +
		weightPolDiversity*PoliticalEntropy(compass) +
		weightSalience*salience
	return clamp(100*sum, 0, 100)
}

// normalizedEntropy computes Shannon entropy of a distribution, scaled to
// [0,1] by the maximum entropy for its arity.
func normalizedEntropy(dist []float64) float64 {
	var total float64
	for _, p := range dist {
		total += p
	}
	if total == 0 || len(dist) < 2 {
		return 0
	}

	var h float64
	for _, p := range dist {
		p /= total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(dist)))
}
