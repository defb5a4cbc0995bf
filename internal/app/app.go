// Package app wires the application together: configuration, database,
// model plumbing, stores, and services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/koopa0/rca-agent/db"
	"github.com/koopa0/rca-agent/internal/chat"
	"github.com/koopa0/rca-agent/internal/config"
	"github.com/koopa0/rca-agent/internal/extract"
	"github.com/koopa0/rca-agent/internal/gcs"
	"github.com/koopa0/rca-agent/internal/intent"
	"github.com/koopa0/rca-agent/internal/knowledge"
	"github.com/koopa0/rca-agent/internal/llm"
	"github.com/koopa0/rca-agent/internal/recommend"
	"github.com/koopa0/rca-agent/internal/search"
	"github.com/koopa0/rca-agent/internal/session"
	"github.com/koopa0/rca-agent/internal/sqlc"
	syncpkg "github.com/koopa0/rca-agent/internal/sync"
	"github.com/koopa0/rca-agent/internal/vector"
)

// App holds the assembled application.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	LLM       *llm.Gemini
	Knowledge *knowledge.Store
	Sessions  *session.Store
	Vector    *vector.Index
	Searcher  *search.Searcher
	Recommend *recommend.Generator
	Intent    *intent.LLMClassifier
	Chat      *chat.Flow
	Sync      *syncpkg.Orchestrator

	bucket *gcs.Bucket
}

// Setup builds the application: run migrations, open the pool, initialize
// the model plumbing, and construct every store and service.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		pool.Close()
		return nil, errors.New("initializing genkit")
	}
	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	client := llm.New(g, embedder, cfg.FullModelName(), nil, logger)

	bucket, err := gcs.NewBucket(ctx, cfg.GCSBucket, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("opening GCS bucket: %w", err)
	}

	queries := sqlc.New(pool)
	knowledgeStore := knowledge.NewStore(queries, logger)
	sessionStore := session.NewStore(queries, pool, logger)
	index := vector.NewIndex(queries)

	extractor := extract.New(client, logger)
	searcher := search.New(client, index, knowledgeStore, logger)
	recommender := recommend.New(client, knowledgeStore, logger)
	classifier := intent.NewLLMClassifier(client, logger)
	flow := chat.New(sessionStore, classifier, searcher, recommender, cfg.TopN, logger)
	orchestrator := syncpkg.New(bucket, extractor, knowledgeStore, client, index, logger)

	logger.Info("application ready",
		"model", cfg.FullModelName(),
		"embedder", cfg.EmbedderModel,
		"bucket", cfg.GCSBucket,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		LLM:       client,
		Knowledge: knowledgeStore,
		Sessions:  sessionStore,
		Vector:    index,
		Searcher:  searcher,
		Recommend: recommender,
		Intent:    classifier,
		Chat:      flow,
		Sync:      orchestrator,
		bucket:    bucket,
	}, nil
}

// Close releases the pool and the bucket client.
func (a *App) Close() {
	if a.bucket != nil {
		if err := a.bucket.Close(); err != nil {
			a.Logger.Warn("closing bucket client", "error", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
