// Package scheduler drives the five-tier pipeline on independent cadences.
// Each tier holds its own mutex so a slow run makes the next tick skip
// instead of queueing, and tier failures are logged, never propagated.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/veritas-news/veritas/internal/cluster"
	"github.com/veritas-news/veritas/internal/config"
	"github.com/veritas-news/veritas/internal/excerpt"
	"github.com/veritas-news/veritas/internal/factcheck"
	"github.com/veritas-news/veritas/internal/fetch"
	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/normalize"
	"github.com/veritas-news/veritas/internal/storage"
)

// Peak hours in the configured timezone. Outside them the fetch tiers slow
// to their off-peak cadence.
const (
	peakStartHour = 6
	peakEndHour   = 23
)

// Per-tier runtime budgets.
const (
	tier1Budget = 8 * time.Minute
	tier2Budget = 12 * time.Minute
	tier3Budget = 45 * time.Minute
	tier4Budget = 90 * time.Minute
	tier5Budget = 30 * time.Minute
)

// Deps groups everything the tiers need.
type Deps struct {
	Articles  *models.ArticleStore
	Events    *models.EventStore
	Runs      *models.RunStore
	Fetchers  *fetch.Registry
	Pipeline  *normalize.Pipeline
	Assigner  *cluster.Assigner
	Extractor *excerpt.Extractor
	Checker   *factcheck.Checker // nil disables Tier 4
	Archive   *storage.Client
}

// tierState guards one tier: the mutex enforces at most one concurrent run,
// lastStart implements the off-peak cadence stretch.
type tierState struct {
	mu        sync.Mutex
	lastStart time.Time
}

// Scheduler owns the cron instance and tier state.
type Scheduler struct {
	cfg  config.Config
	deps Deps
	loc  *time.Location
	cron *cron.Cron
	wg   sync.WaitGroup

	tiers [5]tierState
}

// New builds a scheduler. An unresolvable timezone falls back to UTC.
func New(cfg config.Config, deps Deps) *Scheduler {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		slog.Warn("scheduler: bad timezone, using UTC", "tz", cfg.Scheduler.Timezone, "err", err)
		loc = time.UTC
	}
	return &Scheduler{cfg: cfg, deps: deps, loc: loc}
}

// Start registers the cron entries and launches an immediate fetch pass so
// a fresh deployment has data before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	sc := s.cfg.Scheduler
	s.cron = cron.New(cron.WithLocation(s.loc))

	add := func(spec string, job func()) error {
		_, err := s.cron.AddFunc(spec, job)
		return err
	}

	// Fetch tiers tick at peak cadence; runTier stretches to the off-peak
	// interval outside peak hours.
	if err := add(everyMinutes(sc.Tier1PeakMinutes), func() {
		s.runTier(ctx, 0, "t1_fast_fetch", sc.Tier1PeakMinutes, sc.Tier1OffpeakMinutes, tier1Budget, s.runTier1)
	}); err != nil {
		return err
	}
	if err := add(everyMinutes(sc.Tier2PeakMinutes), func() {
		s.runTier(ctx, 1, "t2_standard_fetch", sc.Tier2PeakMinutes, sc.Tier2OffpeakMinutes, tier2Budget, s.runTier2)
	}); err != nil {
		return err
	}
	if err := add(everyMinutes(sc.Tier3Minutes), func() {
		s.runTier(ctx, 2, "t3_analysis", sc.Tier3Minutes, sc.Tier3Minutes, tier3Budget, s.runTier3)
	}); err != nil {
		return err
	}
	if s.deps.Checker != nil {
		if err := add(everyMinutes(sc.Tier4Minutes), func() {
			s.runTier(ctx, 3, "t4_deep_analysis", sc.Tier4Minutes, sc.Tier4Minutes, tier4Budget, s.runTier4)
		}); err != nil {
			return err
		}
	}
	if err := add("0 3 * * *", func() {
		s.runTier(ctx, 4, "t5_cleanup", 24*60, 24*60, tier5Budget, s.runTier5)
	}); err != nil {
		return err
	}

	s.cron.Start()

	// Initial pass: fast fetch then standard fetch, off the cron path.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runTier(ctx, 0, "t1_fast_fetch", 0, 0, tier1Budget, s.runTier1)
		s.runTier(ctx, 1, "t2_standard_fetch", 0, 0, tier2Budget, s.runTier2)
	}()

	slog.Info("scheduler: started",
		"tz", s.loc.String(),
		"tier1_peak_min", sc.Tier1PeakMinutes,
		"tier2_peak_min", sc.Tier2PeakMinutes,
		"tier3_min", sc.Tier3Minutes,
		"tier4_enabled", s.deps.Checker != nil,
	)
	return nil
}

// Stop halts cron and waits for in-flight tiers.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	slog.Info("scheduler: stopped")
}

// runTier executes one tier tick under its mutex. Ticks arriving while the
// previous run is still going are skipped, as are peak-cadence ticks that
// fall inside the off-peak stretch.
func (s *Scheduler) runTier(ctx context.Context, idx int, name string, peakMin, offpeakMin int, budget time.Duration, work func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}

	state := &s.tiers[idx]
	if !state.mu.TryLock() {
		slog.Warn("scheduler: tick skipped, previous run still active", "tier", name)
		return
	}
	defer state.mu.Unlock()

	now := time.Now()
	if offpeakMin > peakMin && !s.isPeak(now) {
		if now.Sub(state.lastStart) < time.Duration(offpeakMin)*time.Minute {
			return
		}
	}
	state.lastStart = now

	s.wg.Add(1)
	defer s.wg.Done()

	runID, err := s.deps.Runs.Start(ctx, name)
	if err != nil {
		slog.Error("scheduler: record run start", "tier", name, "err", err)
	}

	tierCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	slog.Info("scheduler: tier starting", "tier", name, "run_id", runID)
	workErr := work(tierCtx)

	detail := ""
	if workErr != nil {
		detail = workErr.Error()
		slog.Error("scheduler: tier failed", "tier", name, "run_id", runID, "err", workErr)
	} else {
		slog.Info("scheduler: tier complete", "tier", name, "run_id", runID,
			"duration", time.Since(now).Round(time.Millisecond))
	}

	if err := s.deps.Runs.Finish(ctx, runID, workErr == nil, detail); err != nil {
		slog.Error("scheduler: record run finish", "tier", name, "err", err)
	}
}

// isPeak reports whether t falls inside local peak hours.
func (s *Scheduler) isPeak(t time.Time) bool {
	hour := t.In(s.loc).Hour()
	return hour >= peakStartHour && hour < peakEndHour
}

func everyMinutes(n int) string {
	if n < 1 {
		n = 1
	}
	return "@every " + time.Duration(n*int(time.Minute)).String()
}
