package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reelsearch/config"
	"reelsearch/database"
	apperrors "reelsearch/errors"
	"reelsearch/llmclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	queryVector   func(ctx context.Context, embedding []float32, topK int, genres []string) ([]database.MovieHit, error)
	searchBM25    func(ctx context.Context, query string, genres []string, k int) ([]database.MovieHit, error)
	findBestTitle func(ctx context.Context, phrase string) (*database.MovieHit, error)
}

func (f *fakeStore) QueryVector(ctx context.Context, embedding []float32, topK int, genres []string) ([]database.MovieHit, error) {
	if f.queryVector == nil {
		return nil, nil
	}
	return f.queryVector(ctx, embedding, topK, genres)
}

func (f *fakeStore) SearchBM25(ctx context.Context, query string, genres []string, k int) ([]database.MovieHit, error) {
	if f.searchBM25 == nil {
		return nil, nil
	}
	return f.searchBM25(ctx, query, genres, k)
}

func (f *fakeStore) FindBestTitle(ctx context.Context, phrase string) (*database.MovieHit, error) {
	if f.findBestTitle == nil {
		return nil, nil
	}
	return f.findBestTitle(ctx, phrase)
}

type fakeLLM struct {
	complete func(ctx context.Context, system, user string, format llmclient.ResponseFormat, temperature *float64) (string, error)
	embed    func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string, format llmclient.ResponseFormat, temperature *float64) (string, error) {
	if f.complete == nil {
		return "", errors.New("llm offline")
	}
	return f.complete(ctx, system, user, format, temperature)
}

func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embed == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return f.embed(ctx, text)
}

func testConfig() *config.Config {
	return &config.Config{
		RetrievalTimeout:   2 * time.Second,
		HybridAlpha:        0.7,
		VectorDepth:        20,
		BM25Depth:          20,
		SearchDefaultK:     10,
		ListicleDefaultN:   7,
		ListicleCandidates: 20,
		EmbedCacheSize:     8,
		SnippetMaxChars:    500,
	}
}

func newTestEngine(t *testing.T, store CorpusStore, llm ModelClient) *Engine {
	t.Helper()
	engine, err := New(testConfig(), store, llm, zap.NewNop())
	require.NoError(t, err)
	return engine
}

func corpusHits(prefix string, n int, base float64) []database.MovieHit {
	hits := make([]database.MovieHit, 0, n)
	for i := 0; i < n; i++ {
		hits = append(hits, database.MovieHit{
			ID:       fmt.Sprintf("%s%d", prefix, i),
			Title:    fmt.Sprintf("%s Movie %d", prefix, i),
			Genres:   []string{"Science Fiction"},
			Overview: "a twisty story about time travel",
			Score:    base - float64(i)*0.05,
		})
	}
	return hits
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{}, &fakeLLM{})

	_, err := engine.Search(context.Background(), SearchOptions{Query: "   "})
	assert.True(t, apperrors.IsInvalidQuery(err))
}

func TestSearchHybridSurvivesSingleBackendFailure(t *testing.T) {
	store := &fakeStore{
		queryVector: func(context.Context, []float32, int, []string) ([]database.MovieHit, error) {
			return nil, errors.New("vector index down")
		},
		searchBM25: func(context.Context, string, []string, int) ([]database.MovieHit, error) {
			return corpusHits("b", 6, 10.0), nil
		},
	}
	engine := newTestEngine(t, store, &fakeLLM{})

	result, err := engine.Search(context.Background(), SearchOptions{Query: "sci-fi movies about time travel", K: 5})
	require.NoError(t, err)
	assert.Len(t, result.Items, 5)
	for _, item := range result.Items {
		assert.Equal(t, 0.0, item.VectorScoreRaw)
	}
}

func TestSearchHybridFailsWhenBothBackendsFail(t *testing.T) {
	store := &fakeStore{
		queryVector: func(context.Context, []float32, int, []string) ([]database.MovieHit, error) {
			return nil, errors.New("vector index down")
		},
		searchBM25: func(context.Context, string, []string, int) ([]database.MovieHit, error) {
			return nil, errors.New("lexical index down")
		},
	}
	engine := newTestEngine(t, store, &fakeLLM{})

	_, err := engine.Search(context.Background(), SearchOptions{Query: "space movies"})
	assert.True(t, apperrors.IsBackendUnavailable(err))
}

func TestSearchSingleEngineModeFailsWhenItsBackendFails(t *testing.T) {
	store := &fakeStore{
		queryVector: func(context.Context, []float32, int, []string) ([]database.MovieHit, error) {
			return nil, errors.New("vector index down")
		},
		searchBM25: func(context.Context, string, []string, int) ([]database.MovieHit, error) {
			return corpusHits("b", 4, 8.0), nil
		},
	}
	engine := newTestEngine(t, store, &fakeLLM{})

	_, err := engine.Search(context.Background(), SearchOptions{Query: "space movies", Mode: ModeVector})
	assert.True(t, apperrors.IsBackendUnavailable(err))

	result, err := engine.Search(context.Background(), SearchOptions{Query: "space movies", Mode: ModeBM25})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Items)
}

func TestSearchEmbeddingFailureDegradesVectorSide(t *testing.T) {
	store := &fakeStore{
		searchBM25: func(context.Context, string, []string, int) ([]database.MovieHit, error) {
			return corpusHits("b", 3, 5.0), nil
		},
	}
	llm := &fakeLLM{
		embed: func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		},
	}
	engine := newTestEngine(t, store, llm)

	result, err := engine.Search(context.Background(), SearchOptions{Query: "space movies"})
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
}

func TestSearchTitleSeedMissDowngradesToPlot(t *testing.T) {
	var bm25Query string
	store := &fakeStore{
		findBestTitle: func(_ context.Context, phrase string) (*database.MovieHit, error) {
			return nil, nil // no corpus match
		},
		searchBM25: func(_ context.Context, query string, _ []string, _ int) ([]database.MovieHit, error) {
			bm25Query = query
			return corpusHits("b", 2, 3.0), nil
		},
	}
	engine := newTestEngine(t, store, &fakeLLM{})

	result, err := engine.Search(context.Background(), SearchOptions{Query: "movies like Zzqxfoo"})
	require.NoError(t, err)
	assert.Empty(t, result.Seed.ID)
	assert.Empty(t, result.Seed.Title)
	assert.NotEmpty(t, result.Items)
	assert.NotEmpty(t, bm25Query, "retrieval must proceed on the semantic query text")
}

func TestSearchTitleSeedHitUsesDocumentText(t *testing.T) {
	store := &fakeStore{
		findBestTitle: func(_ context.Context, phrase string) (*database.MovieHit, error) {
			assert.Equal(t, "Gravity", phrase)
			return &database.MovieHit{ID: "m42", Title: "Gravity", Overview: "an astronaut adrift after a debris strike", Score: 10}, nil
		},
		searchBM25: func(_ context.Context, query string, _ []string, _ int) ([]database.MovieHit, error) {
			assert.Contains(t, query, "astronaut adrift")
			return corpusHits("b", 2, 3.0), nil
		},
	}
	engine := newTestEngine(t, store, &fakeLLM{})

	result, err := engine.Search(context.Background(), SearchOptions{Query: "movies similar to Gravity"})
	require.NoError(t, err)
	assert.Equal(t, "m42", result.Seed.ID)
	assert.Equal(t, "Gravity", result.Seed.Title)
}

func TestSearchTruncatesAfterFusion(t *testing.T) {
	store := &fakeStore{
		queryVector: func(context.Context, []float32, int, []string) ([]database.MovieHit, error) {
			return corpusHits("v", 8, 0.9), nil
		},
		searchBM25: func(context.Context, string, []string, int) ([]database.MovieHit, error) {
			return corpusHits("b", 8, 12.0), nil
		},
	}
	engine := newTestEngine(t, store, &fakeLLM{})

	result, err := engine.Search(context.Background(), SearchOptions{Query: "sci-fi movies about time travel", K: 5})
	require.NoError(t, err)
	assert.Len(t, result.Items, 5)
	assert.Equal(t, ModeHybrid, result.Source)
}

func TestSearchRejectsUnknownMode(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{}, &fakeLLM{})
	_, err := engine.Search(context.Background(), SearchOptions{Query: "space", Mode: "psychic"})
	assert.True(t, apperrors.IsInvalidQuery(err))
}
