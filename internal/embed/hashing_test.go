package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingDeterministic(t *testing.T) {
	h := NewHashing()
	a, err := h.Embed(context.Background(), "Earthquake strikes northern Chile")
	require.NoError(t, err)
	b, err := h.Embed(context.Background(), "Earthquake strikes northern Chile")
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical input must yield identical vectors")
	assert.Len(t, a, Dim)
}

func TestHashingNormalized(t *testing.T) {
	h := NewHashing()
	vec, err := h.Embed(context.Background(), "Parliament passes sweeping budget reform bill")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5, "vector must be L2-normalized")
}

func TestHashingSimilarTextsCloserThanUnrelated(t *testing.T) {
	h := NewHashing()
	ctx := context.Background()

	quake1, _ := h.Embed(ctx, "Magnitude 7.1 earthquake strikes off Japan coast")
	quake2, _ := h.Embed(ctx, "Powerful earthquake strikes Japan coast, tsunami warning issued")
	sports, _ := h.Embed(ctx, "Local team wins championship final after penalty shootout")

	assert.Greater(t, dot(quake1, quake2), dot(quake1, sports),
		"lexically overlapping texts must be closer than unrelated ones")
}

func TestHashingEmptyText(t *testing.T) {
	h := NewHashing()
	vec, err := h.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, Dim)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestNormalizeZeroVector(t *testing.T) {
	vec := make([]float32, 4)
	normalize(vec)
	assert.Equal(t, []float32{0, 0, 0, 0}, vec)
}
