// Package storage provides S3-compatible object storage for the cold
// archive of expired articles.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/veritas-news/veritas/internal/config"
	"github.com/veritas-news/veritas/internal/models"
)

// Client wraps an S3-compatible object storage client. An unconfigured
// client is valid and archives nothing.
type Client struct {
	s3     *s3.Client
	bucket string
}

// NewClient creates the archive client for any S3-compatible endpoint.
func NewClient(ctx context.Context, cfg config.ArchiveConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		slog.Warn("storage: archive endpoint not configured, cold archive disabled")
		return &Client{bucket: cfg.Bucket}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &cfg.Endpoint
		o.UsePathStyle = true
	})

	return &Client{s3: client, bucket: cfg.Bucket}, nil
}

// Configured reports whether uploads will actually happen.
func (c *Client) Configured() bool {
	return c.s3 != nil
}

// archiveBatch is the JSON document written per retention run.
type archiveBatch struct {
	ArchivedAt time.Time        `json:"archived_at"`
	Count      int              `json:"count"`
	Articles   []models.Article `json:"articles"`
}

// ArchiveArticles uploads a gzipped JSON batch of articles about to be
// expired. No-op when unconfigured. The object key carries the run
// timestamp so retention runs never overwrite each other.
func (c *Client) ArchiveArticles(ctx context.Context, articles []models.Article) error {
	if c.s3 == nil || len(articles) == 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := archiveBatch{ArchivedAt: now, Count: len(articles), Articles: articles}

	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("storage: marshal batch: %w", err)
	}
	compressed, err := compressGzip(raw)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	key := fmt.Sprintf("archive/%s/articles-%s.json.gz",
		now.Format("2006/01/02"), now.Format("150405"))
	contentType := "application/gzip"

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        bytes.NewReader(compressed),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}

	slog.Info("storage: archived expired articles",
		"key", key, "count", len(articles), "bytes", len(compressed))
	return nil
}

// compressGzip compresses data at best compression.
func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("gzip: create writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip: close: %w", err)
	}
	return buf.Bytes(), nil
}
