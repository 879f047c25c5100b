package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineDistance(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	assert.InDelta(t, 0, CosineDistance(a, a), 1e-9)
	assert.InDelta(t, 1, CosineDistance(a, b), 1e-9)
	assert.Equal(t, 1.0, CosineDistance(a, nil))
	assert.Equal(t, 1.0, CosineDistance(a, []float32{1, 0}))
}

func TestDBSCANTwoClustersAndNoise(t *testing.T) {
	// Two tight groups around orthogonal directions plus one outlier.
	points := [][]float32{
		{1, 0, 0}, {0.99, 0.05, 0}, {0.98, 0.1, 0},
		{0, 1, 0}, {0.05, 0.99, 0}, {0.1, 0.98, 0},
		{0.6, 0.6, 0.52},
	}
	labels := DBSCAN(points, 0.3, 3)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[1], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[4], labels[5])
	assert.NotEqual(t, labels[0], labels[3], "orthogonal groups must separate")
	assert.Equal(t, Noise, labels[6], "the midpoint outlier is noise")
}

func TestDBSCANAllNoiseBelowMinSamples(t *testing.T) {
	points := [][]float32{{1, 0}, {0, 1}}
	labels := DBSCAN(points, 0.3, 3)
	assert.Equal(t, []int{Noise, Noise}, labels)
}

func TestDBSCANDeterministic(t *testing.T) {
	points := [][]float32{
		{1, 0, 0}, {0.97, 0.2, 0}, {0.95, 0.3, 0}, {0.9, 0.4, 0},
		{0, 0, 1}, {0, 0.2, 0.97}, {0, 0.3, 0.95},
	}
	first := DBSCAN(points, 0.3, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DBSCAN(points, 0.3, 3))
	}
}

func TestCentroid(t *testing.T) {
	got := Centroid([][]float32{{2, 0}, {0, 2}})
	assert.Equal(t, []float32{1, 1}, got)
	assert.Nil(t, Centroid(nil))
}
