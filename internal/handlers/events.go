// Package handlers implements the read-only HTTP API: event lists, detail,
// conflicts, search, stats, flagged articles, polarizing sources, health,
// and the verified-events RSS feed.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/rank"
	"github.com/veritas-news/veritas/internal/score"
)

// candidateCap bounds how many filtered events feed one ranking pass.
const candidateCap = 500

// EventHandler serves the /events endpoints.
type EventHandler struct {
	Events   *models.EventStore
	Articles *models.ArticleStore
}

// List handles GET /events. Status selects the section; unverified events
// are never served. The filter runs in the query, the ranker orders the
// full candidate set, and pagination slices the ranked order.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	status := r.URL.Query().Get("status")
	section := rank.SectionAll
	switch status {
	case "", "all":
		status = ""
	case models.TierConfirmed:
		section = rank.SectionConfirmed
	case models.TierDeveloping:
		section = rank.SectionDeveloping
	default:
		writeError(w, http.StatusBadRequest, "status must be one of confirmed, developing, all")
		return
	}

	filter := models.EventFilter{
		Status:       status,
		PoliticsOnly: queryBool(r, "politics_only"),
		SinceHours:   queryInt(r, "since_hours", 0),
	}
	candidates, total, err := h.Events.ListCandidates(r.Context(), filter, candidateCap)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	ranked := rank.Rank(candidates, section, time.Now().UTC())
	writeJSON(w, http.StatusOK, page{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: slicePage(ranked, limit, offset),
	})
}

// eventDetail is the GET /events/{id} response shape.
type eventDetail struct {
	models.Event
	Underreported    bool                 `json:"underreported"`
	Articles         []models.Article     `json:"articles"`
	ScoringBreakdown score.TruthBreakdown `json:"scoring_breakdown"`
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "event id must be an integer")
		return
	}

	event, err := h.Events.GetByID(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	articles, err := h.Articles.ListByEvent(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eventDetail{
		Event:            *event,
		Underreported:    score.Underreported(event, articles),
		Articles:         articles,
		ScoringBreakdown: score.Truth(articles),
	})
}

// Conflicts handles GET /events/conflicts: conflicted events ranked with
// the conflicts section weights.
func (h *EventHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	filter := models.EventFilter{ConflictsOnly: true}
	candidates, total, err := h.Events.ListCandidates(r.Context(), filter, candidateCap)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	ranked := rank.Rank(candidates, rank.SectionConflicts, time.Now().UTC())
	writeJSON(w, http.StatusOK, page{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: slicePage(ranked, limit, offset),
	})
}

// Search handles GET /events/search: substring match over summary and
// member entities, newest first.
func (h *EventHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, offset := pagination(r)

	events, total, err := h.Events.Search(r.Context(), q, queryBool(r, "politics_only"), limit, offset)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: events,
	})
}

// statsResponse extends the aggregate counts with the ingestion watermark.
type statsResponse struct {
	models.StatsSummary
	TotalArticles int        `json:"total_articles"`
	LastIngestion *time.Time `json:"last_ingestion"`
}

// Stats handles GET /events/stats/summary.
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Events.Stats(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	totalArticles, err := h.Articles.Count(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	lastIngestion, err := h.Articles.LastIngestion(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		StatsSummary:  *stats,
		TotalArticles: totalArticles,
		LastIngestion: lastIngestion,
	})
}

// Flagged handles GET /events/flagged: articles with fact-check findings.
func (h *EventHandler) Flagged(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	severity := r.URL.Query().Get("severity")
	switch severity {
	case "", models.FactCheckDisputed, models.FactCheckFalse, models.FactCheckUnverifiable:
	default:
		writeError(w, http.StatusBadRequest, "severity must be one of disputed, false, unverifiable")
		return
	}

	articles, total, err := h.Articles.ListFlagged(r.Context(),
		severity,
		r.URL.Query().Get("source"),
		queryInt(r, "days", 0),
		limit, offset,
	)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: articles,
	})
}

// PolarizingSources handles GET /events/polarizing-sources.
func (h *EventHandler) PolarizingSources(w http.ResponseWriter, r *http.Request) {
	minArticles := queryInt(r, "min_articles", 3)
	limit := queryInt(r, "limit", 20)
	if limit > maxLimit {
		limit = maxLimit
	}

	ranked, err := h.Events.PolarizingSources(r.Context(), minArticles, limit)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if ranked == nil {
		ranked = []models.PolarizingSource{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": ranked})
}
