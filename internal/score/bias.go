package score

import (
	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/sources"
)

// Snippets at or past this length count as deep coverage on the detail axis.
const deepSnippetLen = 800

// Compass builds the four-axis bias compass for an event from the Source
// Registry tags of its members. Each axis is a normalized distribution.
func Compass(members []models.Article) *models.BiasCompass {
	if len(members) == 0 {
		return nil
	}
	n := float64(len(members))

	geo := map[string]float64{
		sources.RegionWestern:     0,
		sources.RegionEastern:     0,
		sources.RegionGlobalSouth: 0,
	}
	political := map[string]float64{"left": 0, "center": 0, "right": 0}
	tone := map[string]float64{"sensational": 0, "factual": 0}
	detail := map[string]float64{"surface": 0, "deep": 0}

	for _, a := range members {
		src := sources.Lookup(a.SourceDomain)
		geo[src.Region]++
		political["left"] += src.Political.Left
		political["center"] += src.Political.Center
		political["right"] += src.Political.Right
		tone["sensational"] += src.Tone.Sensational
		tone["factual"] += src.Tone.Factual
		if len(a.Snippet) >= deepSnippetLen {
			detail["deep"]++
		} else {
			detail["surface"]++
		}
	}

	for _, axis := range []map[string]float64{geo, political, tone, detail} {
		for k := range axis {
			axis[k] /= n
		}
	}

	return &models.BiasCompass{
		Geographic: geo,
		Political:  political,
		Tone:       tone,
		Detail:     detail,
	}
}

// InternationalCoverage counts member articles per source country.
func InternationalCoverage(members []models.Article) map[string]int {
	out := make(map[string]int)
	for _, a := range members {
		src := sources.Lookup(a.SourceDomain)
		country := src.Country
		if country == "" {
			country = "unknown"
		}
		out[country]++
	}
	return out
}

// PoliticalEntropy measures how evenly an event's coverage spreads over the
// left/center/right axis, normalized to [0,1].
func PoliticalEntropy(compass *models.BiasCompass) float64 {
	if compass == nil {
		return 0
	}
	return normalizedEntropy([]float64{
		compass.Political["left"],
		compass.Political["center"],
		compass.Political["right"],
	})
}
