package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eventColumns is the canonical column list used by every event query.
const eventColumns = `id, summary, articles_count, unique_sources, geo_diversity,
	evidence_flag, official_match, truth_score, first_seen, last_seen,
	category, category_confidence, importance_score, coherence_score,
	has_conflict, conflict_severity, conflict_explanation_json,
	bias_compass_json, international_coverage_json, politics_flag,
	retention_frozen, created_at`

// EventStore provides data access methods for events.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// EventFilter narrows the event listing. All filters are applied in the
// query, before pagination.
type EventFilter struct {
	// Status is one of confirmed, developing, all. The unverified tier is
	// always hidden from listings.
	Status        string
	PoliticsOnly  bool
	ConflictsOnly bool
	SinceHours    int
	Limit         int
	Offset        int
}

// scanEventFromRow scans a single event, decoding the JSONB side columns.
func scanEventFromRow(row scannable) *Event {
	var e Event
	var explanationRaw, compassRaw, coverageRaw []byte
	if err := row.Scan(
		&e.ID, &e.Summary, &e.ArticlesCount, &e.UniqueSources, &e.GeoDiversity,
		&e.EvidenceFlag, &e.OfficialMatch, &e.TruthScore, &e.FirstSeen, &e.LastSeen,
		&e.Category, &e.CategoryConfidence, &e.ImportanceScore, &e.CoherenceScore,
		&e.HasConflict, &e.ConflictSeverity, &explanationRaw,
		&compassRaw, &coverageRaw, &e.PoliticsFlag,
		&e.RetentionFrozen, &e.CreatedAt,
	); err != nil {
		return nil
	}
	if len(explanationRaw) > 0 {
		var ex ConflictExplanation
		if json.Unmarshal(explanationRaw, &ex) == nil {
			e.ConflictExplanation = &ex
		}
	}
	if len(compassRaw) > 0 {
		var bc BiasCompass
		if json.Unmarshal(compassRaw, &bc) == nil {
			e.BiasCompass = &bc
		}
	}
	if len(coverageRaw) > 0 {
		_ = json.Unmarshal(coverageRaw, &e.InternationalCoverage)
	}
	e.ConfidenceTier = ConfidenceTier(e.TruthScore)
	return &e
}

// Create inserts a new event with the given one-sentence summary.
func (s *EventStore) Create(ctx context.Context, summary string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO events (summary) VALUES ($1) RETURNING id
	`, summary).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("event create: %w", err)
	}
	return id, nil
}

// GetByID returns a single event.
func (s *EventStore) GetByID(ctx context.Context, id int64) (*Event, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM events WHERE id = $1
	`, eventColumns), id)
	e := scanEventFromRow(row)
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// AssignMembers points the given articles at an event. Idempotent: articles
// already assigned to the event are unaffected.
func (s *EventStore) AssignMembers(ctx context.Context, eventID int64, articleIDs []int64) error {
	if len(articleIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE articles_raw SET cluster_id = $1 WHERE id = ANY($2)
	`, eventID, articleIDs)
	if err != nil {
		return fmt.Errorf("event assign members: %w", err)
	}
	return nil
}

// ScoreFunc recomputes the score fields of an event from its member articles.
// It must be pure over its inputs; failures inside individual sub-scores are
// the scorer's concern and never surface here.
type ScoreFunc func(e *Event, members []Article)

// Recompute re-derives the materialized fields of an event (articles_count,
// unique_sources, first_seen, last_seen) from its members, applies scoreFn,
// and writes the whole row in one statement so readers never observe counts
// and scores from different generations. Events frozen by retention cleanup
// keep their counts.
func (s *EventStore) Recompute(ctx context.Context, eventID int64, scoreFn ScoreFunc) error {
	e, err := s.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	members, err := NewArticleStore(s.pool).ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("event recompute: %w", err)
	}

	if !e.RetentionFrozen {
		e.ArticlesCount = len(members)
		domains := make(map[string]bool, len(members))
		var first, last time.Time
		for _, a := range members {
			domains[a.SourceDomain] = true
			if first.IsZero() || a.PublishedAt.Before(first) {
				first = a.PublishedAt
			}
			if a.PublishedAt.After(last) {
				last = a.PublishedAt
			}
		}
		e.UniqueSources = len(domains)
		if !first.IsZero() {
			e.FirstSeen = &first
			e.LastSeen = &last
		}
	}

	if scoreFn != nil {
		scoreFn(e, members)
	}
	e.ConfidenceTier = ConfidenceTier(e.TruthScore)

	return s.update(ctx, e)
}

// update writes every mutable field of an event in a single statement.
func (s *EventStore) update(ctx context.Context, e *Event) error {
	explanationJSON, err := marshalOrNil(e.ConflictExplanation)
	if err != nil {
		return fmt.Errorf("event update: marshal explanation: %w", err)
	}
	compassJSON, err := marshalOrNil(e.BiasCompass)
	if err != nil {
		return fmt.Errorf("event update: marshal compass: %w", err)
	}
	var coverageJSON []byte
	if len(e.InternationalCoverage) > 0 {
		coverageJSON, err = json.Marshal(e.InternationalCoverage)
		if err != nil {
			return fmt.Errorf("event update: marshal coverage: %w", err)
		}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE events SET
			summary = $1, articles_count = $2, unique_sources = $3,
			geo_diversity = $4, evidence_flag = $5, official_match = $6,
			truth_score = $7, first_seen = $8, last_seen = $9,
			category = $10, category_confidence = $11, importance_score = $12,
			coherence_score = $13, has_conflict = $14, conflict_severity = $15,
			conflict_explanation_json = $16, bias_compass_json = $17,
			international_coverage_json = $18, politics_flag = $19,
			retention_frozen = $20
		WHERE id = $21
	`,
		e.Summary, e.ArticlesCount, e.UniqueSources,
		e.GeoDiversity, e.EvidenceFlag, e.OfficialMatch,
		e.TruthScore, e.FirstSeen, e.LastSeen,
		e.Category, e.CategoryConfidence, e.ImportanceScore,
		e.CoherenceScore, e.HasConflict, e.ConflictSeverity,
		explanationJSON, compassJSON,
		coverageJSON, e.PoliticsFlag,
		e.RetentionFrozen,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("event update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildFilter translates an EventFilter into WHERE conditions and args. The
// unverified tier is excluded in every mode.
func buildFilter(f EventFilter) ([]string, []any) {
	conditions := []string{"truth_score >= $1"}
	args := []any{DevelopingThreshold}

	switch f.Status {
	case TierConfirmed:
		args[0] = ConfirmedThreshold
	case TierDeveloping:
		conditions = append(conditions, fmt.Sprintf("truth_score < $%d", len(args)+1))
		args = append(args, ConfirmedThreshold)
	}
	if f.PoliticsOnly {
		conditions = append(conditions, "politics_flag")
	}
	if f.ConflictsOnly {
		conditions = append(conditions, "has_conflict")
	}
	if f.SinceHours > 0 {
		conditions = append(conditions, fmt.Sprintf("last_seen >= now() - make_interval(hours => $%d)", len(args)+1))
		args = append(args, f.SinceHours)
	}
	return conditions, args
}

// ListCandidates returns the rankable events matching the filter, newest
// first, plus the total match count. It does not paginate: the ranker
// reorders the whole candidate set and the handler slices the page
// afterwards, so the filter is fully applied before pagination. The
// candidate set is capped at limit (default 500).
func (s *EventStore) ListCandidates(ctx context.Context, f EventFilter, limit int) ([]Event, int, error) {
	if limit <= 0 {
		limit = 500
	}

	conditions, args := buildFilter(f)
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("event candidates count: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s FROM events
		%s
		ORDER BY last_seen DESC NULLS LAST, id ASC
		LIMIT $%d
	`, eventColumns, where, len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("event candidates: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Search performs a case-insensitive substring match over event summaries and
// member-article entities.
func (s *EventStore) Search(ctx context.Context, query string, politicsOnly bool, limit, offset int) ([]Event, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	conditions := []string{
		"truth_score >= $1",
		`(summary ILIKE '%' || $2 || '%'
		  OR EXISTS (
			SELECT 1 FROM articles_raw a,
			       jsonb_array_elements_text(a.entities_json) ent
			WHERE a.cluster_id = events.id AND ent ILIKE '%' || $2 || '%'
		  ))`,
	}
	args := []any{DevelopingThreshold, query}
	if politicsOnly {
		conditions = append(conditions, "politics_flag")
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("event search count: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s FROM events
		%s
		ORDER BY last_seen DESC NULLS LAST, id ASC
		LIMIT $3 OFFSET $4
	`, eventColumns, where)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("event search: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// StatsSummary aggregates event and tier counts for the stats endpoint.
type StatsSummary struct {
	TotalEvents     int `json:"total_events"`
	ConfirmedCount  int `json:"confirmed_count"`
	DevelopingCount int `json:"developing_count"`
	UnverifiedCount int `json:"unverified_count"`
	ConflictCount   int `json:"conflict_count"`
	PoliticsCount   int `json:"politics_count"`
}

// Stats returns aggregate counts over all events.
func (s *EventStore) Stats(ctx context.Context) (*StatsSummary, error) {
	var st StatsSummary
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE truth_score >= $1),
		       COUNT(*) FILTER (WHERE truth_score >= $2 AND truth_score < $1),
		       COUNT(*) FILTER (WHERE truth_score < $2),
		       COUNT(*) FILTER (WHERE has_conflict),
		       COUNT(*) FILTER (WHERE politics_flag)
		FROM events
	`, ConfirmedThreshold, DevelopingThreshold).Scan(
		&st.TotalEvents, &st.ConfirmedCount, &st.DevelopingCount,
		&st.UnverifiedCount, &st.ConflictCount, &st.PoliticsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	return &st, nil
}

// PolarizingSource is a source ranked by how often its articles land in
// conflicted events.
type PolarizingSource struct {
	SourceDomain string  `json:"source_domain"`
	ArticleCount int     `json:"article_count"`
	ConflictRate float64 `json:"conflict_rate"`
}

// PolarizingSources ranks source domains by the share of their articles that
// belong to conflicted events. Sources with fewer than minArticles articles
// are excluded.
func (s *EventStore) PolarizingSources(ctx context.Context, minArticles, limit int) ([]PolarizingSource, error) {
	if minArticles <= 0 {
		minArticles = 3
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT a.source_domain,
		       COUNT(*) AS article_count,
		       AVG(CASE WHEN e.has_conflict THEN 1.0 ELSE 0.0 END) AS conflict_rate
		FROM articles_raw a
		JOIN events e ON e.id = a.cluster_id
		GROUP BY a.source_domain
		HAVING COUNT(*) >= $1
		ORDER BY conflict_rate DESC, article_count DESC
		LIMIT $2
	`, minArticles, limit)
	if err != nil {
		return nil, fmt.Errorf("event polarizing sources: %w", err)
	}
	defer rows.Close()

	var out []PolarizingSource
	for rows.Next() {
		var p PolarizingSource
		if err := rows.Scan(&p.SourceDomain, &p.ArticleCount, &p.ConflictRate); err != nil {
			return nil, fmt.Errorf("event polarizing sources scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListUpdatedSince returns events whose last_seen falls after the cutoff,
// most important first, capped at limit. Used by the reanalysis tier.
func (s *EventStore) ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM events
		WHERE last_seen >= $1
		ORDER BY importance_score DESC, last_seen DESC
		LIMIT $2
	`, eventColumns), since, limit)
	if err != nil {
		return nil, fmt.Errorf("event list updated since: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListVerifiedSince returns confirmed and developing events seen after the
// cutoff, newest first. Used by the RSS feed.
func (s *EventStore) ListVerifiedSince(ctx context.Context, since time.Time) ([]Event, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM events
		WHERE truth_score >= $1 AND last_seen >= $2
		ORDER BY last_seen DESC, id ASC
	`, eventColumns), DevelopingThreshold, since)
	if err != nil {
		return nil, fmt.Errorf("event list verified since: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Count returns the total number of events.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("event count: %w", err)
	}
	return count, nil
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		e := scanEventFromRow(rows)
		if e == nil {
			return nil, errors.New("event scan: failed")
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// marshalOrNil marshals v, mapping a nil pointer to a SQL NULL instead of
// the JSON literal null.
func marshalOrNil[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
