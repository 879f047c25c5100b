package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// articleColumns is the canonical column list used by every article query.
const articleColumns = `id, url, source_domain, title, summary, snippet,
	published_at, ingested_at, language, entities_json, cluster_id,
	embedding_blob, fact_check_status, fact_check_flags_json`

// ArticleStore provides data access methods for articles.
type ArticleStore struct {
	pool *pgxpool.Pool
}

// NewArticleStore creates a new ArticleStore.
func NewArticleStore(pool *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{pool: pool}
}

// scannable is an interface for pgx Row and Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanArticleFromRow scans a single article from a row, handling all nullable
// columns.
func scanArticleFromRow(row scannable) *Article {
	var a Article
	var entitiesRaw, flagsRaw, embeddingBlob []byte
	if err := row.Scan(
		&a.ID, &a.URL, &a.SourceDomain, &a.Title, &a.Summary, &a.Snippet,
		&a.PublishedAt, &a.IngestedAt, &a.Language, &entitiesRaw, &a.ClusterID,
		&embeddingBlob, &a.FactCheckStatus, &flagsRaw,
	); err != nil {
		return nil
	}
	if len(entitiesRaw) > 0 {
		_ = json.Unmarshal(entitiesRaw, &a.Entities)
	}
	if len(flagsRaw) > 0 {
		_ = json.Unmarshal(flagsRaw, &a.FactCheckFlags)
	}
	a.Embedding = DecodeEmbedding(embeddingBlob)
	return &a
}

// Insert persists a new article. The URL must already be canonicalized.
// Returns ErrDuplicateURL when another article holds the same canonical URL;
// the first writer's row is left untouched.
func (s *ArticleStore) Insert(ctx context.Context, a *Article) error {
	entitiesJSON, err := json.Marshal(sliceOrEmpty(a.Entities))
	if err != nil {
		return fmt.Errorf("article insert: marshal entities: %w", err)
	}

	if a.FactCheckStatus == "" {
		a.FactCheckStatus = FactCheckUnchecked
	}
	if a.IngestedAt.IsZero() {
		a.IngestedAt = time.Now().UTC()
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO articles_raw (url, source_domain, title, summary, snippet,
		                          published_at, ingested_at, language,
		                          entities_json, embedding_blob, fact_check_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		a.URL, a.SourceDomain, a.Title, a.Summary, a.Snippet,
		a.PublishedAt, a.IngestedAt, a.Language,
		entitiesJSON, EncodeEmbedding(a.Embedding), a.FactCheckStatus,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateURL
		}
		return fmt.Errorf("article insert: %w", err)
	}
	return nil
}

// ExistsByURL checks whether an article with the given canonical URL exists.
func (s *ArticleStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles_raw WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("article exists by url: %w", err)
	}
	return exists, nil
}

// RecentTitlesBySource returns titles of articles ingested since the cutoff
// from the given source domain. Used by the title dedup check.
func (s *ArticleStore) RecentTitlesBySource(ctx context.Context, domain string, since time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT title FROM articles_raw
		WHERE source_domain = $1 AND ingested_at >= $2
	`, domain, since)
	if err != nil {
		return nil, fmt.Errorf("article recent titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("article recent titles scan: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// ListIngestedSince returns articles ingested on or after the cutoff, oldest
// first. Embeddings are decoded when present.
func (s *ArticleStore) ListIngestedSince(ctx context.Context, since time.Time) ([]Article, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM articles_raw
		WHERE ingested_at >= $1
		ORDER BY ingested_at ASC
	`, articleColumns), since)
	if err != nil {
		return nil, fmt.Errorf("article list ingested since: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListByEvent returns all member articles of an event, newest first.
func (s *ArticleStore) ListByEvent(ctx context.Context, eventID int64) ([]Article, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM articles_raw
		WHERE cluster_id = $1
		ORDER BY published_at DESC
	`, articleColumns), eventID)
	if err != nil {
		return nil, fmt.Errorf("article list by event: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// SetEmbedding stores the embedding on an article. First writer wins: an
// already-populated embedding_blob is never overwritten.
func (s *ArticleStore) SetEmbedding(ctx context.Context, id int64, vec []float32) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE articles_raw SET embedding_blob = $1
		WHERE id = $2 AND embedding_blob IS NULL
	`, EncodeEmbedding(vec), id)
	if err != nil {
		return fmt.Errorf("article set embedding: %w", err)
	}
	return nil
}

// UpdateSnippet replaces an article's snippet. Used by the excerpt
// extractor when the feed item carried no usable body text.
func (s *ArticleStore) UpdateSnippet(ctx context.Context, id int64, snippet string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE articles_raw SET snippet = $1 WHERE id = $2
	`, snippet, id)
	if err != nil {
		return fmt.Errorf("article update snippet: %w", err)
	}
	return nil
}

// ListUncheckedImportant returns unchecked articles from the most important
// events, for the deep-analysis tier. Results are capped at limit.
func (s *ArticleStore) ListUncheckedImportant(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM articles_raw a
		JOIN events e ON e.id = a.cluster_id
		WHERE a.fact_check_status = 'unchecked'
		ORDER BY e.importance_score DESC, a.published_at DESC
		LIMIT $1
	`, prefixColumns("a")), limit)
	if err != nil {
		return nil, fmt.Errorf("article list unchecked: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// UpdateFactCheck sets the fact-check status and flags on an article.
func (s *ArticleStore) UpdateFactCheck(ctx context.Context, id int64, status string, flags []FactCheckFlag) error {
	flagsJSON, err := json.Marshal(sliceOrEmpty(flags))
	if err != nil {
		return fmt.Errorf("article update fact check: marshal flags: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE articles_raw
		SET fact_check_status = $1, fact_check_flags_json = $2
		WHERE id = $3
	`, status, flagsJSON, id)
	if err != nil {
		return fmt.Errorf("article update fact check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFlagged returns fact-checked articles whose status is not verified,
// optionally filtered by status ("severity"), source domain, and age in days.
// Filters are applied in the query, before pagination.
func (s *ArticleStore) ListFlagged(ctx context.Context, severity, source string, days, limit, offset int) ([]Article, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if days <= 0 {
		days = 30
	}

	conditions := []string{
		"fact_check_status IN ('disputed', 'false', 'unverifiable')",
		"ingested_at >= now() - make_interval(days => $1)",
	}
	args := []any{days}
	argN := 2

	if severity != "" {
		conditions = append(conditions, fmt.Sprintf("fact_check_status = $%d", argN))
		args = append(args, severity)
		argN++
	}
	if source != "" {
		conditions = append(conditions, fmt.Sprintf("source_domain = $%d", argN))
		args = append(args, source)
		argN++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQ := "SELECT COUNT(*) FROM articles_raw " + where
	if err := s.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("article list flagged count: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s FROM articles_raw
		%s
		ORDER BY ingested_at DESC
		LIMIT $%d OFFSET $%d
	`, articleColumns, where, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("article list flagged: %w", err)
	}
	defer rows.Close()

	articles, err := collectArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// ExpireOlderThan deletes articles whose ingested_at precedes the cutoff and
// returns the deleted rows together with the distinct events they belonged
// to. The select, the delete, and the retention freeze of the touched events
// run in one transaction: no rescore can ever observe the shrunken
// membership with the freeze flag still unset, so frozen counts never drift
// downward.
func (s *ArticleStore) ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]Article, []int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("article expire: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM articles_raw
		WHERE ingested_at < $1
		ORDER BY ingested_at ASC
	`, articleColumns), cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("article expire: select: %w", err)
	}
	expired, err := collectArticles(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}
	if len(expired) == 0 {
		return nil, nil, nil
	}

	touched := make([]int64, 0, 8)
	seen := make(map[int64]bool)
	for _, a := range expired {
		if a.ClusterID != nil && !seen[*a.ClusterID] {
			seen[*a.ClusterID] = true
			touched = append(touched, *a.ClusterID)
		}
	}

	if len(touched) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE events SET retention_frozen = TRUE WHERE id = ANY($1)
		`, touched); err != nil {
			return nil, nil, fmt.Errorf("article expire: freeze events: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM articles_raw WHERE ingested_at < $1`, cutoff); err != nil {
		return nil, nil, fmt.Errorf("article expire: delete: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("article expire: commit: %w", err)
	}
	return expired, touched, nil
}

// Count returns the total number of articles.
func (s *ArticleStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles_raw`).Scan(&count); err != nil {
		return 0, fmt.Errorf("article count: %w", err)
	}
	return count, nil
}

// LastIngestion returns the most recent ingested_at timestamp, or nil when
// the store is empty.
func (s *ArticleStore) LastIngestion(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := s.pool.QueryRow(ctx, `SELECT MAX(ingested_at) FROM articles_raw`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("article last ingestion: %w", err)
	}
	return last, nil
}

// collectArticles drains a row set into a slice.
func collectArticles(rows pgx.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		a := scanArticleFromRow(rows)
		if a == nil {
			return nil, fmt.Errorf("article scan: failed")
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// prefixColumns qualifies the article column list with a table alias.
func prefixColumns(alias string) string {
	parts := strings.Split(articleColumns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// sliceOrEmpty substitutes an empty slice for nil so JSONB columns store []
// instead of null.
func sliceOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
