package search

import (
	"fmt"
	"testing"

	"reelsearch/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScoresBounds(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
	}{
		{"spread", []float64{0.1, 0.5, 0.9, 0.3}},
		{"negative_values", []float64{-0.2, 0.0, 0.7}},
		{"two_values", []float64{3.1, 12.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm := normalizeScores(tt.scores)
			min, max := tt.scores[0], tt.scores[0]
			for _, s := range tt.scores {
				if s < min {
					min = s
				}
				if s > max {
					max = s
				}
				got := norm(s)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 1.0)
			}
			assert.InDelta(t, 1.0, norm(max), 1e-4)
			assert.InDelta(t, 0.0, norm(min), 1e-9)
		})
	}
}

func TestNormalizeScoresDegenerate(t *testing.T) {
	t.Run("empty_input_is_constant_zero", func(t *testing.T) {
		norm := normalizeScores(nil)
		assert.Equal(t, 0.0, norm(0.5))
		assert.Equal(t, 0.0, norm(-3))
	})

	t.Run("constant_scores_all_map_to_zero", func(t *testing.T) {
		norm := normalizeScores([]float64{0.42, 0.42, 0.42})
		assert.Equal(t, 0.0, norm(0.42))
	})
}

func hit(id string, score float64) database.MovieHit {
	return database.MovieHit{ID: id, Title: "Title " + id, Overview: "overview " + id, Score: score}
}

func TestFuseUnionProperty(t *testing.T) {
	vector := []database.MovieHit{hit("a", 0.9), hit("b", 0.8), hit("c", 0.7)}
	bm25 := []database.MovieHit{hit("c", 12.0), hit("d", 9.5)}

	fused := fuse(vector, bm25, 0.7)

	require.Len(t, fused, 4)
	ids := make(map[string]bool)
	for _, r := range fused {
		ids[r.ID] = true
	}
	for _, want := range []string{"a", "b", "c", "d"} {
		assert.True(t, ids[want], "missing id %s", want)
	}
}

func TestFuseMissingSideContributesZero(t *testing.T) {
	vector := []database.MovieHit{hit("a", 0.9), hit("b", 0.5)}
	fused := fuse(vector, nil, 0.7)

	require.Len(t, fused, 2)
	for _, r := range fused {
		assert.Equal(t, 0.0, r.BM25ScoreRaw)
	}
	// With only one side, the combined score is alpha * normalized vector.
	assert.InDelta(t, 0.7, fused[0].CombinedScore, 1e-9)
	assert.Equal(t, "a", fused[0].ID)
}

func TestFuseDeterminism(t *testing.T) {
	var vector, bm25 []database.MovieHit
	for i := 0; i < 8; i++ {
		vector = append(vector, hit(fmt.Sprintf("v%d", i), float64(i)/10))
		bm25 = append(bm25, hit(fmt.Sprintf("b%d", i), float64(8-i)))
	}
	// Overlap three ids.
	bm25[0].ID, bm25[1].ID, bm25[2].ID = "v0", "v1", "v2"

	first := fuse(vector, bm25, 0.6)
	for i := 0; i < 10; i++ {
		again := fuse(vector, bm25, 0.6)
		require.Equal(t, first, again)
	}
}

func TestFuseTieBreaks(t *testing.T) {
	// Both candidates end with combined score 0: single hits on opposite
	// sides each normalize to 0 under a constant distribution. The stronger
	// raw single-modality signal must win.
	vector := []database.MovieHit{{ID: "weak", Title: "Zeta", Score: 0.2}}
	bm25 := []database.MovieHit{{ID: "strong", Title: "Alpha", Score: 5.0}}

	fused := fuse(vector, bm25, 0.5)
	require.Len(t, fused, 2)
	assert.Equal(t, "strong", fused[0].ID)

	// Full tie falls back to ascending title.
	vector = []database.MovieHit{{ID: "x", Title: "Beta", Score: 1.0}, {ID: "y", Title: "Alpha", Score: 1.0}}
	fused = fuse(vector, nil, 0.5)
	require.Len(t, fused, 2)
	assert.Equal(t, "Alpha", fused[0].Title)
	assert.Equal(t, "Beta", fused[1].Title)
}

func TestFuseHybridScenario(t *testing.T) {
	var vector, bm25 []database.MovieHit
	for i := 0; i < 8; i++ {
		vector = append(vector, hit(fmt.Sprintf("v%d", i), 0.9-float64(i)*0.05))
		bm25 = append(bm25, hit(fmt.Sprintf("b%d", i), 14.0-float64(i)))
	}
	bm25[1].ID, bm25[3].ID, bm25[5].ID = "v0", "v2", "v4"

	fused := fuse(vector, bm25, 0.7)
	assert.Len(t, fused, 13, "union of 8+8 with 3 overlaps")

	top5 := fused[:5]
	// Candidates strong on both sides must outrank single-side stragglers.
	ids := make(map[string]bool)
	for _, r := range top5 {
		ids[r.ID] = true
	}
	assert.True(t, ids["v0"], "overlapping top candidate should rank in the top 5")
}

func TestFuseMetadataPrecedence(t *testing.T) {
	vector := []database.MovieHit{{ID: "a", Title: "Vector Title", Genres: []string{"Drama"}, Overview: "vector snippet", Score: 0.9}}
	bm25 := []database.MovieHit{{ID: "a", Title: "BM25 Title", Genres: []string{"Action"}, Overview: "bm25 snippet", Score: 3.0}}

	fused := fuse(vector, bm25, 0.5)
	require.Len(t, fused, 1)
	assert.Equal(t, "Vector Title", fused[0].Title)
	assert.Equal(t, []string{"Drama"}, fused[0].Genres)
	assert.Equal(t, "vector snippet", fused[0].Snippet)
	assert.Equal(t, 0.9, fused[0].VectorScoreRaw)
	assert.Equal(t, 3.0, fused[0].BM25ScoreRaw)
}
