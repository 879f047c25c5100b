package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/veritas-news/veritas/internal/embed"
	"github.com/veritas-news/veritas/internal/models"
)

// Assigner runs one clustering pass and reconciles cluster memberships with
// the Event Store.
type Assigner struct {
	articles *models.ArticleStore
	events   *models.EventStore
	embedder embed.Embedder
}

// NewAssigner wires the clustering pass to its stores.
func NewAssigner(articles *models.ArticleStore, events *models.EventStore, embedder embed.Embedder) *Assigner {
	return &Assigner{articles: articles, events: events, embedder: embedder}
}

// Run clusters all articles ingested in the last window and assigns each
// non-noise cluster to an event. It returns the ids of every event whose
// membership changed, for score recomputation. Articles outside the window
// keep their existing membership.
func (a *Assigner) Run(ctx context.Context, window time.Duration) ([]int64, error) {
	since := time.Now().Add(-window)
	articles, err := a.articles.ListIngestedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("cluster: load window: %w", err)
	}
	if len(articles) == 0 {
		return nil, nil
	}

	// Embeddings are computed lazily here; articles that cannot be
	// embedded drop out of this pass and are retried next cycle.
	var usable []*models.Article
	var vectors [][]float32
	for i := range articles {
		art := &articles[i]
		vec, err := embed.Ensure(ctx, a.embedder, a.articles, art)
		if err != nil {
			slog.Warn("cluster: embedding failed", "article", art.ID, "err", err)
			continue
		}
		usable = append(usable, art)
		vectors = append(vectors, vec)
	}
	if len(usable) < MinSamples {
		return nil, nil
	}

	labels := DBSCAN(vectors, Eps, MinSamples)

	groups := make(map[int][]int)
	for idx, label := range labels {
		if label == Noise {
			continue
		}
		groups[label] = append(groups[label], idx)
	}

	// Deterministic processing order.
	labelOrder := make([]int, 0, len(groups))
	for label := range groups {
		labelOrder = append(labelOrder, label)
	}
	sort.Ints(labelOrder)

	touched := make(map[int64]bool)
	for _, label := range labelOrder {
		eventID, err := a.assignGroup(ctx, groups[label], usable, vectors)
		if err != nil {
			slog.Error("cluster: assign group", "err", err)
			continue
		}
		if eventID != 0 {
			touched[eventID] = true
		}
	}

	out := make([]int64, 0, len(touched))
	for id := range touched {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// assignGroup maps one cluster to an event and moves members that are not
// yet attached to it. Returns the event id, or 0 when nothing changed.
func (a *Assigner) assignGroup(ctx context.Context, memberIdx []int, articles []*models.Article, vectors [][]float32) (int64, error) {
	eventID, err := a.targetEvent(ctx, memberIdx, articles, vectors)
	if err != nil {
		return 0, err
	}

	var move []int64
	for _, idx := range memberIdx {
		art := articles[idx]
		if art.ClusterID == nil || *art.ClusterID != eventID {
			move = append(move, art.ID)
		}
	}
	if len(move) == 0 {
		return 0, nil
	}

	if err := a.events.AssignMembers(ctx, eventID, move); err != nil {
		return 0, fmt.Errorf("assign members to event %d: %w", eventID, err)
	}
	return eventID, nil
}

// targetEvent resolves which event a cluster belongs to. Clusters whose
// members already reference events join the referenced event with the most
// members; ties go to the event with more articles, then the earlier
// first_seen. Clusters with no references get a fresh event summarized by
// the title nearest the centroid.
func (a *Assigner) targetEvent(ctx context.Context, memberIdx []int, articles []*models.Article, vectors [][]float32) (int64, error) {
	refs := make(map[int64]int)
	for _, idx := range memberIdx {
		if cid := articles[idx].ClusterID; cid != nil {
			refs[*cid]++
		}
	}

	if len(refs) > 0 {
		candidates := make([]int64, 0, len(refs))
		for id := range refs {
			candidates = append(candidates, id)
		}
		events := make(map[int64]*models.Event, len(candidates))
		for _, id := range candidates {
			ev, err := a.events.GetByID(ctx, id)
			if err != nil {
				return 0, fmt.Errorf("load event %d: %w", id, err)
			}
			events[id] = ev
		}
		sort.Slice(candidates, func(i, j int) bool {
			ci, cj := candidates[i], candidates[j]
			if refs[ci] != refs[cj] {
				return refs[ci] > refs[cj]
			}
			ei, ej := events[ci], events[cj]
			if ei.ArticlesCount != ej.ArticlesCount {
				return ei.ArticlesCount > ej.ArticlesCount
			}
			fi, fj := ei.FirstSeen, ej.FirstSeen
			if fi != nil && fj != nil && !fi.Equal(*fj) {
				return fi.Before(*fj)
			}
			return ci < cj
		})
		return candidates[0], nil
	}

	summary := representativeTitle(memberIdx, articles, vectors)
	eventID, err := a.events.Create(ctx, summary)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	return eventID, nil
}

// representativeTitle picks the title of the member closest to the cluster
// centroid.
func representativeTitle(memberIdx []int, articles []*models.Article, vectors [][]float32) string {
	member := make([][]float32, len(memberIdx))
	for i, idx := range memberIdx {
		member[i] = vectors[idx]
	}
	centroid := Centroid(member)

	best := memberIdx[0]
	bestDist := 2.0
	for _, idx := range memberIdx {
		if d := CosineDistance(vectors[idx], centroid); d < bestDist {
			bestDist = d
			best = idx
		}
	}
	return articles[best].Title
}
