// Package cluster groups articles into events with density-based clustering
// over embedding vectors.
package cluster

import "math"

// DBSCAN parameters. Distance is 1 - cosine similarity over L2-normalized
// embeddings.
const (
	Eps        = 0.3
	MinSamples = 3
)

// Noise is the label assigned to unclustered points.
const Noise = -1

// CosineDistance computes 1 - cosine similarity between two vectors.
// Mismatched or empty vectors are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// DBSCAN partitions points into clusters. It returns one label per point:
// 0..k-1 for cluster membership, Noise for outliers. Deterministic for a
// given point order.
func DBSCAN(points [][]float32, eps float64, minSamples int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	// Pairwise distances; n is bounded by the 24 h ingestion window so
	// the quadratic cost stays manageable.
	neighbors := func(i int) []int {
		var out []int
		for j := 0; j < n; j++ {
			if j != i && CosineDistance(points[i], points[j]) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	clusterID := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		seeds := neighbors(i)
		if len(seeds)+1 < minSamples {
			continue
		}

		labels[i] = clusterID
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == Noise {
				labels[j] = clusterID
			}
			if visited[j] {
				continue
			}
			visited[j] = true
			labels[j] = clusterID

			more := neighbors(j)
			if len(more)+1 >= minSamples {
				seeds = append(seeds, more...)
			}
		}
		clusterID++
	}
	return labels
}

// Centroid averages a set of vectors. Returns nil for an empty set.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, vec := range vectors {
		if len(vec) != dim {
			continue
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}
	out := make([]float32, dim)
	inv := 1 / float64(len(vectors))
	for i, v := range sum {
		out[i] = float32(v * inv)
	}
	return out
}
