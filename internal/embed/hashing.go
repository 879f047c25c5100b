package embed

import (
	"context"
	"hash/fnv"
	"strings"
)

// Hashing is a deterministic feature-hashing embedder used when no
// embedding server is configured. Unigrams and bigrams of the lowercased
// alphanumeric tokens are hashed into a 384-dim signed bag-of-words vector,
// then L2-normalized. It captures lexical overlap only, which is enough for
// the near-duplicate clustering this pipeline does at eps 0.3.
type Hashing struct{}

// NewHashing creates the fallback embedder.
func NewHashing() *Hashing { return &Hashing{} }

// Embed maps text to a deterministic 384-dim vector.
func (h *Hashing) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, Dim)

	tokens := hashTokens(text)
	for i, tok := range tokens {
		addFeature(vec, tok)
		if i+1 < len(tokens) {
			addFeature(vec, tok+" "+tokens[i+1])
		}
	}
	return normalize(vec), nil
}

// addFeature hashes one feature into the vector. One hash supplies both the
// bucket and the sign, so collisions cancel rather than pile up.
func addFeature(vec []float32, feature string) {
	hasher := fnv.New64a()
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	idx := int(sum % uint64(Dim))
	if (sum>>32)&1 == 0 {
		vec[idx]++
	} else {
		vec[idx]--
	}
}

// hashTokens lowercases and splits text into alphanumeric tokens.
func hashTokens(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
