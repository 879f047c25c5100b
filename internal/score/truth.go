package score

import (
	"math"
	"strconv"
	"time"

	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/sources"
)

// Truth score component weights.
const (
	WeightSourceDiversity = 0.25
	WeightGeoDiversity    = 0.40
	WeightPrimaryEvidence = 0.20
	WeightOfficialMatch   = 0.15
)

// officialMatchWindow bounds how far an official report may lag (or lead)
// the first press coverage and still corroborate it.
const officialMatchWindow = 6 * time.Hour

// TruthComponent is one weighted factor of the truth score.
type TruthComponent struct {
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Explanation string  `json:"explanation"`
}

// TruthBreakdown is the full component decomposition, exposed verbatim on
// the event detail endpoint.
type TruthBreakdown struct {
	SourceDiversity TruthComponent `json:"source_diversity"`
	GeoDiversity    TruthComponent `json:"geo_diversity"`
	PrimaryEvidence TruthComponent `json:"primary_evidence"`
	OfficialMatch   TruthComponent `json:"official_match"`
}

// Score sums the weighted components, scaled to 0-100 and clamped.
func (b TruthBreakdown) Score() float64 {
	sum := b.SourceDiversity.Value*b.SourceDiversity.Weight +
		b.GeoDiversity.Value*b.GeoDiversity.Weight +
		b.PrimaryEvidence.Value*b.PrimaryEvidence.Weight +
		b.OfficialMatch.Value*b.OfficialMatch.Weight
	return clamp(100*sum, 0, 100)
}

// Truth computes the component breakdown for an event's members.
func Truth(members []models.Article) TruthBreakdown {
	domains := make(map[string]bool)
	tlds := make(map[string]bool)
	for _, a := range members {
		domains[a.SourceDomain] = true
		tlds[sources.TLD(a.SourceDomain)] = true
	}

	var b TruthBreakdown

	b.SourceDiversity = TruthComponent{
		Value:       math.Min(float64(len(domains))/5, 1),
		Weight:      WeightSourceDiversity,
		Explanation: plural(len(domains), "distinct source"),
	}
	b.GeoDiversity = TruthComponent{
		Value:       math.Min(float64(len(tlds))/4, 1),
		Weight:      WeightGeoDiversity,
		Explanation: plural(len(tlds), "distinct top-level domain"),
	}

	official := officialMembers(members)
	if len(official) > 0 {
		b.PrimaryEvidence = TruthComponent{
			Value:       1,
			Weight:      WeightPrimaryEvidence,
			Explanation: "corroborated by " + official[0].SourceDomain,
		}
	} else {
		b.PrimaryEvidence = TruthComponent{
			Value:       0,
			Weight:      WeightPrimaryEvidence,
			Explanation: "no official or NGO source",
		}
	}

	b.OfficialMatch = officialMatch(members, official)
	return b
}

// officialMatch scores how closely an official report tracks the first
// press coverage. Value decays linearly with the gap, floored at 0.5 inside
// the window and 0 outside it.
func officialMatch(members, official []models.Article) TruthComponent {
	out := TruthComponent{Weight: WeightOfficialMatch, Explanation: "no matching official report"}
	if len(official) == 0 || len(official) == len(members) {
		return out
	}

	var firstPress, firstOfficial time.Time
	for _, a := range members {
		if sources.IsOfficial(a.SourceDomain) {
			if firstOfficial.IsZero() || a.PublishedAt.Before(firstOfficial) {
				firstOfficial = a.PublishedAt
			}
		} else {
			if firstPress.IsZero() || a.PublishedAt.Before(firstPress) {
				firstPress = a.PublishedAt
			}
		}
	}

	gap := firstOfficial.Sub(firstPress)
	if gap < 0 {
		gap = -gap
	}
	if gap > officialMatchWindow {
		out.Explanation = "official report outside the 6h window"
		return out
	}

	out.Value = math.Max(0.5, 1-gap.Hours()/officialMatchWindow.Hours())
	out.Explanation = "official report within " + gap.Round(time.Minute).String() + " of first coverage"
	return out
}

// officialMembers filters the members published by official feeds.
func officialMembers(members []models.Article) []models.Article {
	var out []models.Article
	for _, a := range members {
		if sources.IsOfficial(a.SourceDomain) {
			out = append(out, a)
		}
	}
	return out
}

// HasMajorWire reports whether any member comes from a global wire agency.
// Events with official evidence but no wire pickup are underreported.
func HasMajorWire(members []models.Article) bool {
	for _, a := range members {
		if sources.IsMajorWire(a.SourceDomain) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
