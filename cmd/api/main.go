// Command api starts the Veritas read-only HTTP API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/veritas-news/veritas/internal/config"
	"github.com/veritas-news/veritas/internal/db"
	"github.com/veritas-news/veritas/internal/handlers"
	"github.com/veritas-news/veritas/internal/models"
)

// requestTimeout is the client-visible deadline on every request.
const requestTimeout = 15 * time.Second

func main() {
	// Structured logging.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Database connection.
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Data stores.
	articleStore := models.NewArticleStore(pool)
	eventStore := models.NewEventStore(pool)
	runStore := models.NewRunStore(pool)

	// Handlers.
	eventHandler := &handlers.EventHandler{
		Events:   eventStore,
		Articles: articleStore,
	}
	feedHandler := &handlers.FeedHandler{
		Events:   eventStore,
		Articles: articleStore,
	}
	healthHandler := &handlers.HealthHandler{
		Pool:     pool,
		Articles: articleStore,
		Events:   eventStore,
		Runs:     runStore,
	}

	origins := []string{"*"}
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	// Router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/feeds/verified.xml", feedHandler.ServeVerified)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.Get("/conflicts", eventHandler.Conflicts)
		r.Get("/search", eventHandler.Search)
		r.Get("/stats/summary", eventHandler.Stats)
		r.Get("/flagged", eventHandler.Flagged)
		r.Get("/polarizing-sources", eventHandler.PolarizingSources)
		r.Get("/{id}", eventHandler.Get)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		slog.Info("api: shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("api: shutdown", "err", err)
		}
		close(done)
	}()

	slog.Info("api: listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("api: server failed", "err", err)
		os.Exit(1)
	}
	<-done
}
