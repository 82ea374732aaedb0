// Package registry wires every collaborator the pipeline depends on into a
// single immutable value built once at startup, mirroring the teacher's
// databases.Manager / functional-options construction style.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	segmentiokafka "github.com/segmentio/kafka-go"

	"cloudfuze.com/retriever/internal/llm"
	"cloudfuze.com/retriever/internal/llm/anthropic"
	"cloudfuze.com/retriever/internal/retriever/cache"
	"cloudfuze.com/retriever/internal/retriever/config"
	"cloudfuze.com/retriever/internal/retriever/convo"
	"cloudfuze.com/retriever/internal/retriever/dense"
	"cloudfuze.com/retriever/internal/retriever/embed"
	"cloudfuze.com/retriever/internal/retriever/rerank"
	"cloudfuze.com/retriever/internal/retriever/sparse"
	"cloudfuze.com/retriever/internal/retriever/trace"
)

// Registry holds every wired collaborator plus the immutable config they
// were built from. Construct with New; never mutate a field afterwards.
type Registry struct {
	Config *config.Config

	Embedder embed.Embedder
	Vector   dense.VectorStore
	Sparse   *sparse.Index
	Scorer   rerank.Scorer
	LLM      llm.Provider
	Conv     convo.Store
	Cache    *cache.Cache
	Trace    *trace.Exporter
	Feedback *FeedbackVerifier
	Logger   zerolog.Logger

	pgPool *pgxpool.Pool
}

// FeedbackVerifier bundles the Postgres write path with an optional
// ClickHouse trace reader. The /feedback handler writes through Store only;
// Reader is not consulted before feedback is accepted.
type FeedbackVerifier struct {
	Store  *trace.FeedbackStore
	Reader *trace.ClickHouseReader
}

// Option customizes construction, primarily so tests can inject fakes in
// place of real network-backed collaborators.
type Option func(*Registry) error

func WithEmbedder(e embed.Embedder) Option  { return func(r *Registry) error { r.Embedder = e; return nil } }
func WithVectorStore(v dense.VectorStore) Option {
	return func(r *Registry) error { r.Vector = v; return nil }
}
func WithScorer(s rerank.Scorer) Option { return func(r *Registry) error { r.Scorer = s; return nil } }
func WithLLM(p llm.Provider) Option     { return func(r *Registry) error { r.LLM = p; return nil } }
func WithConversationStore(c convo.Store) Option {
	return func(r *Registry) error { r.Conv = c; return nil }
}

// New builds a Registry from cfg, dialing every real backend that cfg
// configures (Qdrant, Postgres, Redis, Kafka, ClickHouse) and constructing
// the OpenAI and Anthropic clients. Options run afterwards and replace the
// collaborators already built; they do not prevent that dialing.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Registry, error) {
	r := &Registry{Config: cfg, Logger: logger, Sparse: sparse.NewIndex()}

	if cfg.SparseIndexPath != "" {
		if err := r.Sparse.Load(cfg.SparseIndexPath); err != nil {
			logger.Warn().Err(err).Str("path", cfg.SparseIndexPath).Msg("sparse index load skipped")
		}
	}

	llmProvider := anthropic.New(cfg.AnthropicAPIKey, "", cfg.Retrieval.LLMModel)
	r.LLM = llmProvider
	r.Scorer = &rerank.LLMScorer{Provider: llmProvider, Model: cfg.Retrieval.RerankerModel}
	r.Embedder = embed.NewOpenAIEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.Retrieval.EmbeddingModel, 1536)

	if cfg.QdrantAddr != "" {
		store, err := dense.NewQdrantStore(cfg.QdrantAddr, cfg.QdrantCollection)
		if err != nil {
			return nil, fmt.Errorf("registry: qdrant: %w", err)
		}
		r.Vector = store
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("registry: postgres: %w", err)
		}
		r.pgPool = pool
		convoStore := convo.NewPostgresStore(pool)
		if err := convoStore.Init(ctx); err != nil {
			return nil, fmt.Errorf("registry: postgres conversation schema: %w", err)
		}
		r.Conv = convoStore

		feedbackStore := trace.NewFeedbackStore(pool)
		if err := feedbackStore.Init(ctx); err != nil {
			return nil, fmt.Errorf("registry: postgres feedback schema: %w", err)
		}
		r.Feedback = &FeedbackVerifier{Store: feedbackStore}
	} else {
		r.Conv = convo.NewMemoryStore()
	}

	if cfg.RedisAddr != "" {
		c, err := cache.New(cfg.RedisAddr, "", 0)
		if err != nil {
			return nil, fmt.Errorf("registry: redis: %w", err)
		}
		r.Cache = c
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != "" {
		writer := &segmentiokafka.Writer{
			Addr:     segmentiokafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &segmentiokafka.LeastBytes{},
		}
		r.Trace = trace.NewExporter(writer, cfg.KafkaTopic)
	}

	if cfg.ClickHouseDSN != "" && r.Feedback != nil {
		reader, err := trace.NewClickHouseReader(ctx, cfg.ClickHouseDSN, "", 5*time.Second)
		if err != nil {
			logger.Warn().Err(err).Msg("clickhouse reader unavailable")
		} else {
			r.Feedback.Reader = reader
		}
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Close releases pooled connections. Safe to call on a partially built or
// nil Registry.
func (r *Registry) Close() {
	if r == nil {
		return
	}
	if r.pgPool != nil {
		r.pgPool.Close()
	}
	if r.Cache != nil {
		_ = r.Cache.Close()
	}
}
