// Package score derives every per-event metric: truth score and confidence
// tier, coherence and conflict analysis, bias compass, category, and
// importance. All functions are pure over the event's member articles.
package score

import (
	"time"

	"github.com/veritas-news/veritas/internal/models"
)

// Event recomputes all derived score fields on e from its members. It
// matches the store's ScoreFunc signature so the store can persist counts
// and scores in the same transaction.
func Event(e *models.Event, members []models.Article) {
	now := time.Now().UTC()

	breakdown := Truth(members)
	e.GeoDiversity = breakdown.GeoDiversity.Value
	e.EvidenceFlag = breakdown.PrimaryEvidence.Value > 0
	e.OfficialMatch = breakdown.OfficialMatch.Value > 0
	e.TruthScore = breakdown.Score()
	e.ConfidenceTier = models.ConfidenceTier(e.TruthScore)

	e.Category, e.CategoryConfidence = Classify(e.Summary, allEntities(members))
	e.PoliticsFlag = e.Category == CategoryPolitics || hasPoliticalEntity(members)

	e.CoherenceScore = Coherence(members)
	e.ConflictSeverity = SeverityFor(e.CoherenceScore)
	e.HasConflict = e.ConflictSeverity != models.SeverityNone
	if e.HasConflict {
		e.ConflictExplanation = ExplainConflict(members)
	} else {
		e.ConflictExplanation = nil
	}

	e.BiasCompass = Compass(members)
	e.InternationalCoverage = InternationalCoverage(members)
	e.ImportanceScore = Importance(e, members, e.BiasCompass, now)
}

// Underreported reports whether an event has primary evidence but no major
// wire pickup.
func Underreported(e *models.Event, members []models.Article) bool {
	return e.EvidenceFlag && !HasMajorWire(members)
}

func allEntities(members []models.Article) []string {
	var out []string
	for _, a := range members {
		out = append(out, a.Entities...)
	}
	return out
}

func hasPoliticalEntity(members []models.Article) bool {
	for _, a := range members {
		for _, e := range a.Entities {
			if IsPoliticalEntity(e) {
				return true
			}
		}
	}
	return false
}
