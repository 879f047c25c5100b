// Package factcheck runs the optional deep-analysis pass: an external LLM
// reviews the main claims of important unchecked articles and flags the
// disputed ones. The pass is idempotent; an article is checked once and the
// verdict sticks.
package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/veritas-news/veritas/internal/models"
	"github.com/veritas-news/veritas/internal/score"
)

const (
	model       = openai.GPT4oMini
	callTimeout = 60 * time.Second
)

const systemPrompt = `You are a fact-checking assistant for a news pipeline.
Given a news article title and snippet, identify up to 3 checkable factual
claims and assess each one. Respond with ONLY a JSON object:
{"status": "verified"|"disputed"|"false"|"unverifiable",
 "flags": [{"claim": "...", "verdict": "supported"|"disputed"|"refuted"|"unverifiable", "confidence": 0.0-1.0}]}
The overall status is the worst verdict among the claims. Output no other text.`

// Checker drives one fact-check batch.
type Checker struct {
	client     *openai.Client
	articles   *models.ArticleStore
	events     *models.EventStore
	batchSize  int
	maxWorkers int
}

// NewChecker creates a checker, or nil when no API key is configured,
// which disables the tier.
func NewChecker(apiKey string, articles *models.ArticleStore, events *models.EventStore, batchSize, maxWorkers int) *Checker {
	if apiKey == "" {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 30
	}
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	return &Checker{
		client:     openai.NewClient(apiKey),
		articles:   articles,
		events:     events,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
	}
}

// Run checks one batch of unchecked articles from the most important
// events, then recomputes the events the verdicts touched. Per-article
// failures are logged and leave the article unchecked for the next batch.
func (c *Checker) Run(ctx context.Context) error {
	batch, err := c.articles.ListUncheckedImportant(ctx, c.batchSize)
	if err != nil {
		return fmt.Errorf("factcheck: load batch: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	var mu sync.Mutex
	touched := make(map[int64]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	for i := range batch {
		article := batch[i]
		g.Go(func() error {
			status, flags, err := c.checkArticle(gctx, &article)
			if err != nil {
				slog.Warn("factcheck: article failed", "article", article.ID, "err", err)
				return nil
			}
			if err := c.articles.UpdateFactCheck(gctx, article.ID, status, flags); err != nil {
				slog.Error("factcheck: update", "article", article.ID, "err", err)
				return nil
			}
			if article.ClusterID != nil {
				mu.Lock()
				touched[*article.ClusterID] = true
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("factcheck: %w", err)
	}

	eventIDs := make([]int64, 0, len(touched))
	for id := range touched {
		eventIDs = append(eventIDs, id)
	}
	sort.Slice(eventIDs, func(i, j int) bool { return eventIDs[i] < eventIDs[j] })

	for _, id := range eventIDs {
		if err := c.events.Recompute(ctx, id, score.Event); err != nil {
			slog.Error("factcheck: recompute event", "event", id, "err", err)
		}
	}

	slog.Info("factcheck: batch complete", "checked", len(batch), "events", len(eventIDs))
	return nil
}

// checkArticle submits one article to the model and parses the verdict.
func (c *Checker) checkArticle(ctx context.Context, a *models.Article) (string, []models.FactCheckFlag, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	input := a.Title
	if a.Snippet != "" {
		input += "\n\n" + a.Snippet
	} else if a.Summary != "" {
		input += "\n\n" + a.Summary
	}

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("empty completion")
	}

	var verdict struct {
		Status string                 `json:"status"`
		Flags  []models.FactCheckFlag `json:"flags"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return "", nil, fmt.Errorf("parse verdict: %w", err)
	}

	status := normalizeStatus(verdict.Status)
	return status, verdict.Flags, nil
}

// normalizeStatus guards against off-enum model output.
func normalizeStatus(status string) string {
	switch status {
	case models.FactCheckVerified, models.FactCheckDisputed,
		models.FactCheckFalse, models.FactCheckUnverifiable:
		return status
	default:
		return models.FactCheckUnverifiable
	}
}
