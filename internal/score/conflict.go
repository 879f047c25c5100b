package score

import (
	"sort"
	"strings"

	"github.com/veritas-news/veritas/internal/cluster"
	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/sources"
)

// Conflict severity thresholds over the coherence score.
const (
	severityLowBelow    = 70.0
	severityMediumBelow = 50.0
	severityHighBelow   = 30.0
)

const (
	maxKeyEntities = 5
	maxExcerpts    = 3
	excerptLen     = 280
)

// Coherence scores how tightly the member embeddings agree: 100 times one
// minus the mean pairwise cosine distance. Events with fewer than two
// embedded members are trivially coherent.
func Coherence(members []models.Article) float64 {
	var vectors [][]float32
	for _, a := range members {
		if len(a.Embedding) > 0 {
			vectors = append(vectors, a.Embedding)
		}
	}
	if len(vectors) < 2 {
		return 100
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sum += cluster.CosineDistance(vectors[i], vectors[j])
			pairs++
		}
	}
	return clamp(100*(1-sum/float64(pairs)), 0, 100)
}

// SeverityFor maps a coherence score to a conflict severity bucket.
func SeverityFor(coherence float64) string {
	switch {
	case coherence >= severityLowBelow:
		return models.SeverityNone
	case coherence >= severityMediumBelow:
		return models.SeverityLow
	case coherence >= severityHighBelow:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

// ExplainConflict splits a conflicted event into its two dominant
// narratives and describes each as a Perspective. Returns nil when the
// members cannot be split.
func ExplainConflict(members []models.Article) *models.ConflictExplanation {
	var embedded []models.Article
	var vectors [][]float32
	for _, a := range members {
		if len(a.Embedding) > 0 {
			embedded = append(embedded, a)
			vectors = append(vectors, a.Embedding)
		}
	}
	if len(embedded) < 4 {
		return nil
	}

	groupA, groupB := splitNarratives(vectors)
	if len(groupA) == 0 || len(groupB) == 0 {
		return nil
	}

	perspectives := []models.Perspective{
		buildPerspective(groupA, embedded, vectors),
		buildPerspective(groupB, embedded, vectors),
	}

	return &models.ConflictExplanation{
		DifferenceType: differenceType(perspectives),
		Perspectives:   perspectives,
	}
}

// splitNarratives divides the vectors into two groups. A tighter density
// pass goes first; when it finds fewer than two clusters, the members are
// split around the most distant pair.
func splitNarratives(vectors [][]float32) ([]int, []int) {
	labels := cluster.DBSCAN(vectors, cluster.Eps*0.66, 2)

	sizes := make(map[int]int)
	for _, label := range labels {
		if label != cluster.Noise {
			sizes[label]++
		}
	}
	if len(sizes) >= 2 {
		ordered := make([]int, 0, len(sizes))
		for label := range sizes {
			ordered = append(ordered, label)
		}
		sort.Slice(ordered, func(i, j int) bool {
			if sizes[ordered[i]] != sizes[ordered[j]] {
				return sizes[ordered[i]] > sizes[ordered[j]]
			}
			return ordered[i] < ordered[j]
		})
		var a, b []int
		for idx, label := range labels {
			switch label {
			case ordered[0]:
				a = append(a, idx)
			case ordered[1]:
				b = append(b, idx)
			}
		}
		return a, b
	}

	// Farthest-pair seeding, then nearest-seed assignment.
	si, sj := 0, 1
	maxDist := -1.0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			if d := cluster.CosineDistance(vectors[i], vectors[j]); d > maxDist {
				maxDist = d
				si, sj = i, j
			}
		}
	}
	var a, b []int
	for idx := range vectors {
		if cluster.CosineDistance(vectors[idx], vectors[si]) <= cluster.CosineDistance(vectors[idx], vectors[sj]) {
			a = append(a, idx)
		} else {
			b = append(b, idx)
		}
	}
	return a, b
}

// buildPerspective summarizes one narrative group.
func buildPerspective(memberIdx []int, articles []models.Article, vectors [][]float32) models.Perspective {
	group := make([][]float32, len(memberIdx))
	for i, idx := range memberIdx {
		group[i] = vectors[idx]
	}
	centroid := cluster.Centroid(group)

	domains := make(map[string]bool)
	entityFreq := make(map[string]int)
	var entityOrder []string
	var texts, excerpts []string
	var political sources.PoliticalBias

	best := memberIdx[0]
	bestDist := 2.0

	for _, idx := range memberIdx {
		a := articles[idx]
		domains[a.SourceDomain] = true
		for _, e := range a.Entities {
			if entityFreq[e] == 0 {
				entityOrder = append(entityOrder, e)
			}
			entityFreq[e]++
		}
		texts = append(texts, a.Title, a.Summary)
		if a.Snippet != "" && len(excerpts) < maxExcerpts {
			excerpts = append(excerpts, excerpt(a.Snippet))
		}

		bias := sources.Lookup(a.SourceDomain).Political
		political.Left += bias.Left
		political.Center += bias.Center
		political.Right += bias.Right

		if d := cluster.CosineDistance(vectors[idx], centroid); d < bestDist {
			bestDist = d
			best = idx
		}
	}

	sort.SliceStable(entityOrder, func(i, j int) bool {
		return entityFreq[entityOrder[i]] > entityFreq[entityOrder[j]]
	})
	if len(entityOrder) > maxKeyEntities {
		entityOrder = entityOrder[:maxKeyEntities]
	}

	sourceList := make([]string, 0, len(domains))
	for d := range domains {
		sourceList = append(sourceList, d)
	}
	sort.Strings(sourceList)

	return models.Perspective{
		Sources:                sourceList,
		ArticleCount:           len(memberIdx),
		RepresentativeTitle:    articles[best].Title,
		KeyEntities:            entityOrder,
		Sentiment:              Sentiment(texts),
		PoliticalLeaning:       political.Leaning(),
		RepresentativeExcerpts: excerpts,
	}
}

// differenceType labels what separates the two perspectives: political
// leaning first, then entity disagreement (factual), then framing.
func differenceType(p []models.Perspective) string {
	if p[0].PoliticalLeaning != p[1].PoliticalLeaning {
		return "political"
	}
	if regionOf(p[0].Sources) != regionOf(p[1].Sources) {
		return "geographic"
	}
	if entityOverlap(p[0].KeyEntities, p[1].KeyEntities) < 0.25 {
		return "factual"
	}
	return "framing"
}

// regionOf returns the dominant registry region of a source list.
func regionOf(domains []string) string {
	counts := make(map[string]int)
	for _, d := range domains {
		counts[sources.Lookup(d).Region]++
	}
	best, bestCount := "", -1
	for _, region := range []string{sources.RegionWestern, sources.RegionEastern, sources.RegionGlobalSouth} {
		if counts[region] > bestCount {
			best, bestCount = region, counts[region]
		}
	}
	return best
}

// entityOverlap is Jaccard similarity over two entity sets.
func entityOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, e := range a {
		setA[strings.ToLower(e)] = true
	}
	inter := 0
	setB := make(map[string]bool, len(b))
	for _, e := range b {
		key := strings.ToLower(e)
		if setB[key] {
			continue
		}
		setB[key] = true
		if setA[key] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// excerpt trims a snippet to a short quote at a word boundary.
func excerpt(snippet string) string {
	if len(snippet) <= excerptLen {
		return snippet
	}
	cut := snippet[:excerptLen]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
