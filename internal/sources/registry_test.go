package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	src := Lookup("theguardian.com")
	assert.Equal(t, RegionWestern, src.Region)
	assert.Equal(t, "GB", src.Country)
	assert.Equal(t, "left", src.Political.Leaning())

	// Subdomain and www resolve to the registered parent.
	assert.Equal(t, "bbc.co.uk", Lookup("news.bbc.co.uk").Domain)
	assert.Equal(t, "bbc.co.uk", Lookup("www.bbc.co.uk").Domain)
	assert.Equal(t, "usgs.gov", Lookup("earthquake.usgs.gov").Domain)
}

func TestLookupUnknownDomainFallsBackToNeutral(t *testing.T) {
	src := Lookup("some-random-blog.example")
	assert.Equal(t, "some-random-blog.example", src.Domain)
	assert.Equal(t, "center", src.Political.Leaning())
	assert.InDelta(t, 1.0, src.Political.Left+src.Political.Center+src.Political.Right, 1e-9)
	assert.InDelta(t, 1.0, src.Tone.Sensational+src.Tone.Factual, 1e-9)
}

func TestRegistryDistributionsSumToOne(t *testing.T) {
	for domain, src := range registry {
		assert.InDelta(t, 1.0, src.Political.Left+src.Political.Center+src.Political.Right, 1e-9,
			"political distribution for %s", domain)
		assert.InDelta(t, 1.0, src.Tone.Sensational+src.Tone.Factual, 1e-9,
			"tone distribution for %s", domain)
	}
}

func TestLeaning(t *testing.T) {
	assert.Equal(t, "left", PoliticalBias{0.6, 0.3, 0.1}.Leaning())
	assert.Equal(t, "right", PoliticalBias{0.1, 0.3, 0.6}.Leaning())
	assert.Equal(t, "center", PoliticalBias{0.2, 0.6, 0.2}.Leaning())
	assert.Equal(t, "center", PoliticalBias{0.5, 0.5, 0}.Leaning())
}

func TestIsOfficial(t *testing.T) {
	assert.True(t, IsOfficial("usgs.gov"))
	assert.True(t, IsOfficial("earthquake.usgs.gov"))
	assert.True(t, IsOfficial("www.who.int"))
	assert.False(t, IsOfficial("reuters.com"))
}

func TestIsMajorWire(t *testing.T) {
	assert.True(t, IsMajorWire("reuters.com"))
	assert.True(t, IsMajorWire("www.ap.org"))
	assert.False(t, IsMajorWire("reliefweb.int"))
}

func TestTLD(t *testing.T) {
	assert.Equal(t, "uk", TLD("bbc.co.uk"))
	assert.Equal(t, "com", TLD("reuters.com"))
	assert.Equal(t, "localhost", TLD("localhost"))
}
