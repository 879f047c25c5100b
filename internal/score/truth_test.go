package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veritas-news/veritas/internal/models"
)

func article(domain string, publishedAt time.Time) models.Article {
	return models.Article{
		SourceDomain: domain,
		Title:        "Magnitude 7.1 earthquake strikes off the coast",
		PublishedAt:  publishedAt,
	}
}

// Confirmed earthquake: wide source and TLD spread, USGS corroboration
// within minutes.
func TestTruthConfirmedEarthquake(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	members := []models.Article{
		article("usgs.gov", base),
		article("reuters.com", base.Add(10*time.Minute)),
		article("bbc.co.uk", base.Add(12*time.Minute)),
		article("lemonde.fr", base.Add(15*time.Minute)),
		article("nhk.or.jp", base.Add(18*time.Minute)),
		article("abc.net.au", base.Add(20*time.Minute)),
		article("cnn.com", base.Add(25*time.Minute)),
		article("aljazeera.com", base.Add(28*time.Minute)),
	}

	b := Truth(members)
	truthScore := b.Score()

	assert.Equal(t, 1.0, b.SourceDiversity.Value, "8 sources saturate the diversity component")
	assert.Equal(t, 1.0, b.GeoDiversity.Value, "6 TLDs saturate the geographic component")
	assert.Equal(t, 1.0, b.PrimaryEvidence.Value)
	assert.GreaterOrEqual(t, b.OfficialMatch.Value, 0.9, "USGS report landed within minutes")

	assert.GreaterOrEqual(t, truthScore, 90.0)
	assert.Equal(t, models.TierConfirmed, models.ConfidenceTier(truthScore))
}

// Underreported crisis: NGO evidence, no wire pickup.
func TestTruthUnderreportedCrisis(t *testing.T) {
	base := time.Now().Add(-50 * time.Hour)
	members := []models.Article{
		article("reliefweb.int", base),
		article("unocha.org", base.Add(time.Hour)),
		article("news24.com", base.Add(3*time.Hour)),
		article("news24.com", base.Add(5*time.Hour)),
	}

	b := Truth(members)
	truthScore := b.Score()

	assert.Equal(t, 1.0, b.PrimaryEvidence.Value, "NGO feeds count as primary evidence")
	assert.Equal(t, models.TierDeveloping, models.ConfidenceTier(truthScore))
	assert.GreaterOrEqual(t, truthScore, 60.0)
	assert.Less(t, truthScore, 75.0)

	e := &models.Event{EvidenceFlag: true}
	assert.True(t, Underreported(e, members), "no major wire coverage")
	assert.False(t, HasMajorWire(members))
}

func TestTruthNoOfficialSource(t *testing.T) {
	base := time.Now()
	members := []models.Article{
		article("example.com", base),
		article("other.com", base),
	}
	b := Truth(members)

	assert.Zero(t, b.PrimaryEvidence.Value)
	assert.Zero(t, b.OfficialMatch.Value)
}

func TestTruthOfficialMatchWindow(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Report 5 h after first coverage: inside the window, floored at 0.5.
	inside := []models.Article{
		article("reuters.com", base),
		article("bbc.co.uk", base),
		article("theguardian.com", base),
		article("usgs.gov", base.Add(5*time.Hour)),
	}
	assert.Equal(t, 0.5, Truth(inside).OfficialMatch.Value)

	// Report 7 h after: outside the window.
	outside := []models.Article{
		article("reuters.com", base),
		article("bbc.co.uk", base),
		article("theguardian.com", base),
		article("usgs.gov", base.Add(7*time.Hour)),
	}
	assert.Zero(t, Truth(outside).OfficialMatch.Value)
}

func TestTruthDeterministic(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	members := []models.Article{
		article("usgs.gov", base),
		article("reuters.com", base.Add(10*time.Minute)),
		article("bbc.co.uk", base.Add(20*time.Minute)),
	}
	first := Truth(members).Score()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Truth(members).Score())
	}
}

func TestScoreClamped(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-5, 0, 100))
	assert.Equal(t, 100.0, clamp(105, 0, 100))
}
