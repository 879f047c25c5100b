package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veritas-news/veritas/internal/fetch"
	"github.com/veritas-news/veritas/internal/score"
)

// Per-source fetch windows.
const (
	gdeltWindow    = 15 * time.Minute
	rssWindow      = 60 * time.Minute
	redditWindow   = 15 * time.Minute
	newsapiWindow  = 60 * time.Minute
	standardWindow = 60 * time.Minute
)

// reclusterWindow bounds incremental clustering; memberships older than
// this are frozen.
const reclusterWindow = 6 * time.Hour

// Tier 2 worker pool size.
const maxFetchWorkers = 6

// Tier 3 caps.
const maxEventsPerAnalysis = 25

// tier2Sources lists the standard-fetch variants with their windows.
var tier2Sources = []struct {
	name   string
	window time.Duration
}{
	{"rss", rssWindow},
	{"newsapi", newsapiWindow},
	{"mediastack", standardWindow},
	{"reddit", redditWindow},
	{"ngo_gov", standardWindow},
}

// runTier1 runs the fast GDELT fetch and normalizes the batch.
func (s *Scheduler) runTier1(ctx context.Context) error {
	fetcher := s.deps.Fetchers.Get("gdelt")
	if fetcher == nil {
		return fmt.Errorf("gdelt fetcher not registered")
	}

	batch, err := fetcher.Fetch(ctx, gdeltWindow)
	if err != nil {
		return fmt.Errorf("gdelt fetch: %w", err)
	}

	res := s.deps.Pipeline.Run(ctx, batch)
	slog.Info("tier1: ingested",
		"fetched", len(batch), "inserted", res.Inserted,
		"dup", res.SkippedDup, "lang", res.SkippedLang, "noise", res.SkippedNoise)
	return nil
}

// runTier2 runs the standard fetchers in parallel, normalizes the combined
// batch, reclusters the recent window, and recomputes touched events.
func (s *Scheduler) runTier2(ctx context.Context) error {
	var mu sync.Mutex
	var combined []fetch.RawArticle

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFetchWorkers)

	for _, src := range tier2Sources {
		fetcher := s.deps.Fetchers.Get(src.name)
		if fetcher == nil {
			continue
		}
		window := src.window
		g.Go(func() error {
			batch, err := fetcher.Fetch(gctx, window)
			if err != nil {
				// A dead source never sinks the tier.
				slog.Warn("tier2: source failed", "source", fetcher.Name(), "err", err)
				return nil
			}
			mu.Lock()
			combined = append(combined, batch...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("tier2 fetch: %w", err)
	}

	res := s.deps.Pipeline.Run(ctx, combined)
	slog.Info("tier2: ingested", "fetched", len(combined), "inserted", res.Inserted, "dup", res.SkippedDup)

	touched, err := s.deps.Assigner.Run(ctx, reclusterWindow)
	if err != nil {
		return fmt.Errorf("tier2 cluster: %w", err)
	}
	s.recomputeEvents(ctx, touched)
	return nil
}

// runTier3 reclusters the recent window and fully re-analyzes recently
// updated events, with excerpt extraction for the most conflicted ones.
func (s *Scheduler) runTier3(ctx context.Context) error {
	touched, err := s.deps.Assigner.Run(ctx, reclusterWindow)
	if err != nil {
		return fmt.Errorf("tier3 cluster: %w", err)
	}
	s.recomputeEvents(ctx, touched)

	events, err := s.deps.Events.ListUpdatedSince(ctx, time.Now().Add(-s.analysisWindow()), maxEventsPerAnalysis)
	if err != nil {
		return fmt.Errorf("tier3 list events: %w", err)
	}

	excerptBudget := s.cfg.Scheduler.MaxExcerptsPerRun
	analyzed, enriched := 0, 0

	for i := range events {
		if ctx.Err() != nil {
			break
		}
		e := &events[i]

		if err := s.deps.Events.Recompute(ctx, e.ID, score.Event); err != nil {
			slog.Error("tier3: recompute", "event", e.ID, "err", err)
			continue
		}
		analyzed++

		fresh, err := s.deps.Events.GetByID(ctx, e.ID)
		if err != nil {
			slog.Error("tier3: reload event", "event", e.ID, "err", err)
			continue
		}
		if !fresh.HasConflict || excerptBudget <= 0 {
			continue
		}

		members, err := s.deps.Articles.ListByEvent(ctx, e.ID)
		if err != nil {
			slog.Error("tier3: load members", "event", e.ID, "err", err)
			continue
		}
		excerptBudget--
		if n := s.deps.Extractor.EnrichEvent(ctx, members); n > 0 {
			enriched++
			// New snippets feed the conflict explanation; recompute once more.
			if err := s.deps.Events.Recompute(ctx, e.ID, score.Event); err != nil {
				slog.Error("tier3: recompute after excerpts", "event", e.ID, "err", err)
			}
		}
	}

	slog.Info("tier3: analysis complete", "events", analyzed, "excerpt_events", enriched)
	return nil
}

// runTier4 delegates to the fact-check collaborator.
func (s *Scheduler) runTier4(ctx context.Context) error {
	return s.deps.Checker.Run(ctx)
}

// runTier5 expires old articles, freezing the counts of the events they
// leave behind in the same transaction as the delete, then archives the
// expired rows best-effort.
func (s *Scheduler) runTier5(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.ArticleRetentionDays)

	doomed, frozen, err := s.deps.Articles.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("tier5 expire: %w", err)
	}
	if len(doomed) == 0 {
		slog.Info("tier5: nothing to expire")
		return nil
	}

	if err := s.deps.Archive.ArchiveArticles(ctx, doomed); err != nil {
		slog.Error("tier5: archive failed", "count", len(doomed), "err", err)
	}

	slog.Info("tier5: cleanup complete", "expired", len(doomed), "frozen_events", len(frozen))
	return nil
}

// analysisWindow is how far back tier 3 looks for events to re-analyze.
// Falls back to the recluster window when unconfigured.
func (s *Scheduler) analysisWindow() time.Duration {
	if s.cfg.AnalysisWindowHours > 0 {
		return time.Duration(s.cfg.AnalysisWindowHours) * time.Hour
	}
	return reclusterWindow
}

// recomputeEvents re-scores a set of events, logging per-event failures.
func (s *Scheduler) recomputeEvents(ctx context.Context, eventIDs []int64) {
	for _, id := range eventIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.deps.Events.Recompute(ctx, id, score.Event); err != nil {
			slog.Error("scheduler: recompute event", "event", id, "err", err)
		}
	}
}
