package search

import (
	"strings"

	"reelsearch/textnorm"
)

// TaskType classifies what the user ultimately wants back.
type TaskType string

const (
	TaskListicle    TaskType = "listicle"
	TaskPlainSearch TaskType = "plain_search"
	TaskFindSimilar TaskType = "find_similar"
)

// SearchType selects how the retrieval seed is derived.
type SearchType string

const (
	SearchPlot  SearchType = "plot"
	SearchTitle SearchType = "title"
)

const (
	// MinResults and MaxResults bound the requested result count.
	MinResults = 1
	MaxResults = 50

	defaultResults = 10
	maxKeywords    = 12
)

// RetrievalPlan is the structured intent extracted from a raw query. A plan
// is always complete and vocabulary-legal: construction clamps the count,
// re-canonicalizes genres, and defaults the semantic query, regardless of
// whether the LLM or the heuristic produced the raw fields.
type RetrievalPlan struct {
	Task            TaskType   `json:"task"`
	N               int        `json:"n"`
	SearchType      SearchType `json:"searchType"`
	CandidateTitle  string     `json:"candidateTitle,omitempty"`
	SemanticQuery   string     `json:"semanticQuery"`
	Genres          []string   `json:"genres"`
	Keywords        []string   `json:"keywords"`
	SoftConstraints []string   `json:"softConstraints"`
	Confidence      float64    `json:"confidence"`
}

// Seed is the text retrieval runs against. ID and Title are set only when a
// title resolution succeeded; Text is always non-empty.
type Seed struct {
	ID    string
	Title string
	Text  string
}

// FusedResult is one entry of the fused ranking. CombinedScore is the
// weighted sum of the per-backend normalized scores; the raw scores are kept
// for tie-breaking and diagnostics.
type FusedResult struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Genres         []string `json:"genres"`
	Snippet        string   `json:"snippet"`
	CombinedScore  float64  `json:"combinedScore"`
	VectorScoreRaw float64  `json:"vectorScoreRaw"`
	BM25ScoreRaw   float64  `json:"bm25ScoreRaw"`
}

// ListicleItem is one entry of a grounded listicle. CitationRef is the
// 1-based index into the generation context; 0 means the item was backfilled
// from the fused ranking rather than cited by the model.
type ListicleItem struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres,omitempty"`
	Reason      string   `json:"reason"`
	CitationRef int      `json:"citationRef"`
}

// finalize applies the invariants shared by the LLM and heuristic paths:
// n clamped into [1,50] (defaultN when absent), genres re-canonicalized
// against the fixed vocabulary, keywords capped, and the semantic query
// defaulted to the trimmed raw query.
func (p *RetrievalPlan) finalize(rawQuery string, defaultN int) {
	if p.Task == "" {
		p.Task = TaskPlainSearch
	}
	if p.SearchType == "" {
		p.SearchType = SearchPlot
	}
	p.N = clampResults(p.N, defaultN)
	p.Genres = textnorm.CanonicalizeGenres(p.Genres)
	if len(p.Keywords) > maxKeywords {
		p.Keywords = p.Keywords[:maxKeywords]
	}
	if strings.TrimSpace(p.SemanticQuery) == "" {
		p.SemanticQuery = strings.TrimSpace(rawQuery)
	}
	if p.SearchType != SearchTitle {
		p.CandidateTitle = ""
	}
	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 1 {
		p.Confidence = 1
	}
}

func clampResults(n, defaultN int) int {
	if n < MinResults {
		if defaultN >= MinResults && defaultN <= MaxResults {
			return defaultN
		}
		return defaultResults
	}
	if n > MaxResults {
		return MaxResults
	}
	return n
}
