// Command worker runs the Veritas background pipeline: tiered fetching,
// normalization, clustering, scoring, optional fact-checking, and retention
// cleanup.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/veritas-news/veritas/internal/cluster"
	"github.com/veritas-news/veritas/internal/config"
	"github.com/veritas-news/veritas/internal/db"
	"github.com/veritas-news/veritas/internal/embed"
	"github.com/veritas-news/veritas/internal/excerpt"
	"github.com/veritas-news/veritas/internal/factcheck"
	"github.com/veritas-news/veritas/internal/fetch"
	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/normalize"
	"github.com/veritas-news/veritas/internal/scheduler"
	"github.com/veritas-news/veritas/internal/storage"
)

func main() {
	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	slog.Info("worker: starting veritas worker")

	cfg := config.Load()
	if !cfg.Scheduler.Enabled {
		slog.Info("worker: scheduler disabled (set ENABLE_SCHEDULER=true), exiting")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("worker: database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Stores.
	articleStore := models.NewArticleStore(pool)
	eventStore := models.NewEventStore(pool)
	runStore := models.NewRunStore(pool)

	// Fetchers: keyless sources always, keyed ones when configured.
	registry := fetch.NewRegistry()
	registry.Register(fetch.NewGDELT())
	registry.Register(fetch.NewRSS())
	registry.Register(fetch.NewReddit())
	registry.Register(fetch.NewNGOGov(cfg.Keys.NASAFirms))
	if f := fetch.NewNewsAPI(cfg.Keys.NewsAPI); f != nil {
		registry.Register(f)
	} else {
		slog.Info("worker: newsapi disabled, no key")
	}
	if f := fetch.NewMediastack(cfg.Keys.Mediastack); f != nil {
		registry.Register(f)
	} else {
		slog.Info("worker: mediastack disabled, no key")
	}
	slog.Info("worker: fetchers ready", "sources", registry.Names())

	// Embedder: external server when configured, deterministic local
	// feature hashing otherwise.
	var embedder embed.Embedder
	if cfg.Embed.ServerURL != "" {
		embedder = embed.NewServerClient(cfg.Embed.ServerURL, cfg.Embed.Model)
		slog.Info("worker: using embedding server", "url", cfg.Embed.ServerURL, "model", cfg.Embed.Model)
	} else {
		embedder = embed.NewHashing()
		slog.Info("worker: using local hashing embedder")
	}

	// Cold archive for expired articles.
	archiveClient, err := storage.NewClient(ctx, cfg.Archive)
	if err != nil {
		slog.Error("worker: archive client creation failed", "err", err)
		os.Exit(1)
	}

	checker := factcheck.NewChecker(cfg.Keys.OpenAI, articleStore, eventStore,
		cfg.Scheduler.FactCheckBatchSize, cfg.Scheduler.MaxFactCheckWorkers)
	if checker == nil {
		slog.Info("worker: fact-check tier disabled, no key")
	}

	sched := scheduler.New(cfg, scheduler.Deps{
		Articles:  articleStore,
		Events:    eventStore,
		Runs:      runStore,
		Fetchers:  registry,
		Pipeline:  normalize.NewPipeline(articleStore),
		Assigner:  cluster.NewAssigner(articleStore, eventStore, embedder),
		Extractor: excerpt.NewExtractor(articleStore),
		Checker:   checker,
		Archive:   archiveClient,
	})

	if err := sched.Start(ctx); err != nil {
		slog.Error("worker: scheduler start failed", "err", err)
		os.Exit(1)
	}

	// Block until shutdown signal, then drain in-flight tiers.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("worker: shutting down")
	cancel()
	sched.Stop()
	slog.Info("worker: stopped")
}
