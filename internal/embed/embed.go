// Package embed maps article text to fixed-length semantic vectors. Two
// implementations share the Embedder interface: an HTTP client for an
// external sentence-embedding server, and a deterministic feature-hashing
// fallback used when no server is configured.
package embed

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/veritas-news/veritas/internal/models"
)

// Dim is the embedding dimensionality.
const Dim = 384

// Embedder maps text to an L2-normalized vector. Identical input yields
// identical output.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ArticleText builds the canonical embedding input for an article.
func ArticleText(a *models.Article) string {
	return strings.TrimSpace(strings.TrimSpace(a.Title) + " " + strings.TrimSpace(a.Summary))
}

// Ensure returns the article's embedding, computing and caching it on first
// use. The store write uses first-writer-wins so concurrent tiers never
// flap the cached vector.
func Ensure(ctx context.Context, e Embedder, store *models.ArticleStore, a *models.Article) ([]float32, error) {
	if len(a.Embedding) > 0 {
		return a.Embedding, nil
	}

	vec, err := e.Embed(ctx, ArticleText(a))
	if err != nil {
		return nil, fmt.Errorf("embed article %d: %w", a.ID, err)
	}

	if err := store.SetEmbedding(ctx, a.ID, vec); err != nil {
		return nil, fmt.Errorf("cache embedding %d: %w", a.ID, err)
	}
	a.Embedding = vec
	return vec, nil
}

// normalize L2-normalizes a vector in place and returns it. A zero vector
// is returned unchanged.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return vec
}
