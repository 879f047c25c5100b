package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceTier(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, TierConfirmed},
		{75, TierConfirmed},
		{74.9, TierDeveloping},
		{40, TierDeveloping},
		{39.9, TierUnverified},
		{0, TierUnverified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceTier(tt.score), "score %v", tt.score)
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 0, 3.14159}
	blob := EncodeEmbedding(vec)
	assert.Len(t, blob, 16)
	assert.Equal(t, vec, DecodeEmbedding(blob))
}

func TestEmbeddingEdgeCases(t *testing.T) {
	assert.Nil(t, EncodeEmbedding(nil))
	assert.Nil(t, DecodeEmbedding(nil))
	assert.Nil(t, DecodeEmbedding([]byte{1, 2, 3}), "length not divisible by 4 is malformed")
}

func TestBuildFilter(t *testing.T) {
	// Every mode hides the unverified tier.
	conditions, args := buildFilter(EventFilter{})
	assert.Equal(t, []string{"truth_score >= $1"}, conditions)
	assert.Equal(t, []any{DevelopingThreshold}, args)

	conditions, args = buildFilter(EventFilter{Status: TierConfirmed})
	assert.Equal(t, []any{ConfirmedThreshold}, args)
	assert.Len(t, conditions, 1)

	conditions, args = buildFilter(EventFilter{Status: TierDeveloping})
	assert.Contains(t, conditions, "truth_score < $2")
	assert.Equal(t, []any{DevelopingThreshold, ConfirmedThreshold}, args)

	conditions, args = buildFilter(EventFilter{PoliticsOnly: true, ConflictsOnly: true, SinceHours: 24})
	assert.Contains(t, conditions, "politics_flag")
	assert.Contains(t, conditions, "has_conflict")
	assert.Contains(t, conditions, "last_seen >= now() - make_interval(hours => $2)")
	assert.Equal(t, []any{DevelopingThreshold, 24}, args)
}
