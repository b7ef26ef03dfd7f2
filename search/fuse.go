package search

import (
	"sort"

	"reelsearch/database"
)

// normEpsilon floors the min-max denominator so a constant score
// distribution maps everything to 0 instead of dividing by zero.
const normEpsilon = 1e-6

// normalizeScores returns a min-max normalizer over the given raw scores.
// Empty input yields the constant-zero function. The returned closure is
// pure; ranges are computed per call, never cached across requests.
func normalizeScores(scores []float64) func(float64) float64 {
	if len(scores) == 0 {
		return func(float64) float64 { return 0 }
	}
	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	denom := max - min
	if denom < normEpsilon {
		denom = normEpsilon
	}
	return func(x float64) float64 {
		return (x - min) / denom
	}
}

type fusedEntry struct {
	result    FusedResult
	hasVector bool
	hasBM25   bool
}

// fuse merges the two backend result lists into one deterministically ordered
// ranking. Each side's scores are normalized independently, the candidate id
// set is the exact union of both sides (a missing side contributes 0), and
// combined = alpha*normVector + (1-alpha)*normBM25. Ties break by the
// stronger single-modality raw score, then ascending title.
func fuse(vectorResults, bm25Results []database.MovieHit, alpha float64) []FusedResult {
	vecScores := make([]float64, 0, len(vectorResults))
	for _, h := range vectorResults {
		vecScores = append(vecScores, h.Score)
	}
	bmScores := make([]float64, 0, len(bm25Results))
	for _, h := range bm25Results {
		bmScores = append(bmScores, h.Score)
	}
	normVec := normalizeScores(vecScores)
	normBM := normalizeScores(bmScores)

	merged := make(map[string]*fusedEntry)
	// Vector side first: its metadata wins when both backends supply it.
	for _, h := range vectorResults {
		if entry, ok := merged[h.ID]; ok {
			if h.Score > entry.result.VectorScoreRaw {
				entry.result.VectorScoreRaw = h.Score
			}
			continue
		}
		merged[h.ID] = &fusedEntry{
			result: FusedResult{
				ID:             h.ID,
				Title:          h.Title,
				Genres:         h.Genres,
				Snippet:        h.Overview,
				VectorScoreRaw: h.Score,
			},
			hasVector: true,
		}
	}
	for _, h := range bm25Results {
		if entry, ok := merged[h.ID]; ok {
			if !entry.hasBM25 || h.Score > entry.result.BM25ScoreRaw {
				entry.result.BM25ScoreRaw = h.Score
			}
			entry.hasBM25 = true
			if entry.result.Title == "" {
				entry.result.Title = h.Title
			}
			if len(entry.result.Genres) == 0 {
				entry.result.Genres = h.Genres
			}
			if entry.result.Snippet == "" {
				entry.result.Snippet = h.Overview
			}
			continue
		}
		merged[h.ID] = &fusedEntry{
			result: FusedResult{
				ID:           h.ID,
				Title:        h.Title,
				Genres:       h.Genres,
				Snippet:      h.Overview,
				BM25ScoreRaw: h.Score,
			},
			hasBM25: true,
		}
	}

	fused := make([]FusedResult, 0, len(merged))
	for _, entry := range merged {
		vec := 0.0
		if entry.hasVector {
			vec = normVec(entry.result.VectorScoreRaw)
		}
		bm := 0.0
		if entry.hasBM25 {
			bm = normBM(entry.result.BM25ScoreRaw)
		}
		entry.result.CombinedScore = alpha*vec + (1-alpha)*bm
		fused = append(fused, entry.result)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].CombinedScore != fused[j].CombinedScore {
			return fused[i].CombinedScore > fused[j].CombinedScore
		}
		// Favor one very strong single-modality signal over two mediocre ones.
		iMax := maxFloat(fused[i].VectorScoreRaw, fused[i].BM25ScoreRaw)
		jMax := maxFloat(fused[j].VectorScoreRaw, fused[j].BM25ScoreRaw)
		if iMax != jMax {
			return iMax > jMax
		}
		return fused[i].Title < fused[j].Title
	})

	return fused
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
