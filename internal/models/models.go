// Package models defines the persisted Article and Event records and their
// PostgreSQL-backed stores. The stores are the only components that own
// mutable rows; everything else works on copies scoped to one pipeline cycle
// or one API request.
package models

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Sentinel errors shared by the stores.
var (
	// ErrDuplicateURL is returned when an insert conflicts on canonical URL.
	ErrDuplicateURL = errors.New("duplicate url")

	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
)

// Fact-check statuses for an article.
const (
	FactCheckUnchecked    = "unchecked"
	FactCheckVerified     = "verified"
	FactCheckDisputed     = "disputed"
	FactCheckFalse        = "false"
	FactCheckUnverifiable = "unverifiable"
)

// Confidence tiers derived from the truth score.
const (
	TierConfirmed  = "confirmed"
	TierDeveloping = "developing"
	TierUnverified = "unverified"
)

// Truth score thresholds separating the confidence tiers.
const (
	ConfirmedThreshold  = 75.0
	DevelopingThreshold = 40.0
)

// ConfidenceTier maps a truth score to its tier bucket.
func ConfidenceTier(truthScore float64) string {
	switch {
	case truthScore >= ConfirmedThreshold:
		return TierConfirmed
	case truthScore >= DevelopingThreshold:
		return TierDeveloping
	default:
		return TierUnverified
	}
}

// Article is one fetched, normalized news item.
type Article struct {
	ID              int64           `json:"id"`
	URL             string          `json:"url"`
	SourceDomain    string          `json:"source_domain"`
	Title           string          `json:"title"`
	Summary         string          `json:"summary,omitempty"`
	Snippet         string          `json:"snippet,omitempty"`
	PublishedAt     time.Time       `json:"timestamp"`
	IngestedAt      time.Time       `json:"ingested_at"`
	Language        string          `json:"language"`
	Entities        []string        `json:"entities,omitempty"`
	ClusterID       *int64          `json:"cluster_id,omitempty"`
	Embedding       []float32       `json:"-"`
	FactCheckStatus string          `json:"fact_check_status"`
	FactCheckFlags  []FactCheckFlag `json:"fact_check_flags,omitempty"`
}

// FactCheckFlag records one externally checked claim.
type FactCheckFlag struct {
	Claim       string  `json:"claim"`
	Verdict     string  `json:"verdict"`
	EvidenceURL string  `json:"evidence_url,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// Event is a cluster of articles believed to describe the same occurrence.
type Event struct {
	ID                    int64                `json:"id"`
	Summary               string               `json:"summary"`
	ArticlesCount         int                  `json:"articles_count"`
	UniqueSources         int                  `json:"unique_sources"`
	GeoDiversity          float64              `json:"geo_diversity"`
	EvidenceFlag          bool                 `json:"evidence_flag"`
	OfficialMatch         bool                 `json:"official_match"`
	TruthScore            float64              `json:"truth_score"`
	ConfidenceTier        string               `json:"confidence_tier"`
	FirstSeen             *time.Time           `json:"first_seen,omitempty"`
	LastSeen              *time.Time           `json:"last_seen,omitempty"`
	Category              string               `json:"category"`
	CategoryConfidence    float64              `json:"category_confidence"`
	ImportanceScore       float64              `json:"importance_score"`
	CoherenceScore        float64              `json:"coherence_score"`
	HasConflict           bool                 `json:"has_conflict"`
	ConflictSeverity      string               `json:"conflict_severity"`
	ConflictExplanation   *ConflictExplanation `json:"conflict_explanation,omitempty"`
	BiasCompass           *BiasCompass         `json:"bias_compass,omitempty"`
	InternationalCoverage map[string]int       `json:"international_coverage,omitempty"`
	PoliticsFlag          bool                 `json:"politics_flag"`
	RetentionFrozen       bool                 `json:"retention_frozen"`
	CreatedAt             time.Time            `json:"created_at"`
}

// Conflict severities derived from the coherence score.
const (
	SeverityNone   = "none"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ConflictExplanation describes the narrative split inside a conflicted event.
type ConflictExplanation struct {
	DifferenceType string        `json:"difference_type"`
	Perspectives   []Perspective `json:"perspectives"`
}

// Perspective is one side of a narrative conflict.
type Perspective struct {
	Sources                []string `json:"sources"`
	ArticleCount           int      `json:"article_count"`
	RepresentativeTitle    string   `json:"representative_title"`
	KeyEntities            []string `json:"key_entities,omitempty"`
	Sentiment              string   `json:"sentiment"`
	PoliticalLeaning       string   `json:"political_leaning"`
	RepresentativeExcerpts []string `json:"representative_excerpts,omitempty"`
}

// BiasCompass holds the four normalized bias axes of an event.
type BiasCompass struct {
	Geographic map[string]float64 `json:"geographic"`
	Political  map[string]float64 `json:"political"`
	Tone       map[string]float64 `json:"tone"`
	Detail     map[string]float64 `json:"detail"`
}

// EncodeEmbedding serializes a float32 vector to a little-endian byte blob
// for the embedding_blob column.
func EncodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding deserializes an embedding blob back into a float32 vector.
// Returns nil for empty or malformed blobs.
func DecodeEmbedding(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}
