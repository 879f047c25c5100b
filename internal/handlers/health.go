package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritas-news/veritas/internal/models"
)

// HealthHandler serves GET /health, the only external signal of internal
// degradation.
type HealthHandler struct {
	Pool     *pgxpool.Pool
	Articles *models.ArticleStore
	Events   *models.EventStore
	Runs     *models.RunStore
}

type healthResponse struct {
	Status        string     `json:"status"`
	Database      bool       `json:"database"`
	WorkerLastRun *time.Time `json:"worker_last_run"`
	TotalEvents   int        `json:"total_events"`
	TotalArticles int        `json:"total_articles"`
}

// Health reports overall service state. A dead database degrades the
// status but the endpoint itself still answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := healthResponse{Status: "ok"}

	if err := h.Pool.Ping(ctx); err != nil {
		resp.Status = "degraded"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Database = true

	if lastRun, err := h.Runs.LastSuccessful(ctx); err == nil {
		resp.WorkerLastRun = lastRun
	}
	if n, err := h.Events.Count(ctx); err == nil {
		resp.TotalEvents = n
	}
	if n, err := h.Articles.Count(ctx); err == nil {
		resp.TotalArticles = n
	}

	writeJSON(w, http.StatusOK, resp)
}
