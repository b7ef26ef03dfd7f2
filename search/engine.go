package search

import (
	"context"

	"reelsearch/config"
	"reelsearch/database"
	"reelsearch/llmclient"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// CorpusStore is the narrow slice of the movie store the pipeline consumes.
// *database.PostgresStore satisfies it; tests inject fakes.
type CorpusStore interface {
	QueryVector(ctx context.Context, embedding []float32, topK int, genres []string) ([]database.MovieHit, error)
	SearchBM25(ctx context.Context, query string, genres []string, k int) ([]database.MovieHit, error)
	FindBestTitle(ctx context.Context, phrase string) (*database.MovieHit, error)
}

// ModelClient covers the two model collaborators: text/JSON completion and
// embedding. *llmclient.Client satisfies it.
type ModelClient interface {
	Complete(ctx context.Context, system, user string, format llmclient.ResponseFormat, temperature *float64) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine runs the query-understanding and hybrid-retrieval pipeline. It is
// constructed once per process and holds no per-request state; every request
// is an independent computation over its own inputs.
type Engine struct {
	cfg        *config.Config
	store      CorpusStore
	llm        ModelClient
	logger     *zap.Logger
	embedCache *lru.Cache
}

func New(cfg *config.Config, store CorpusStore, llm ModelClient, logger *zap.Logger) (*Engine, error) {
	size := cfg.EmbedCacheSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		store:      store,
		llm:        llm,
		logger:     logger,
		embedCache: cache,
	}, nil
}

// embedSeed returns the unit-norm embedding for the seed text, consulting the
// process-wide LRU first.
func (e *Engine) embedSeed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.embedCache.Get(text); ok {
		if vec, ok := cached.([]float32); ok {
			return vec, nil
		}
	}
	vec, err := e.llm.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.embedCache.Add(text, vec)
	return vec, nil
}
