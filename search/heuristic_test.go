package search

import (
	"strings"
	"testing"

	"reelsearch/textnorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicPlanCompleteness(t *testing.T) {
	vocab := make(map[string]bool, len(textnorm.CanonicalGenres))
	for _, g := range textnorm.CanonicalGenres {
		vocab[g] = true
	}

	queries := []string{
		"",
		"   ",
		"7 mind-bending sci-fi movies with twisty plots",
		"movies similar to Gravity",
		"top 100 horror films",
		"!!!???",
		"a",
		strings.Repeat("space opera ", 50),
	}

	for _, q := range queries {
		t.Run("query_"+q[:min(len(q), 20)], func(t *testing.T) {
			plan := heuristicPlan(q, 10)
			assert.GreaterOrEqual(t, plan.N, MinResults)
			assert.LessOrEqual(t, plan.N, MaxResults)
			for _, g := range plan.Genres {
				assert.True(t, vocab[g], "genre %q outside vocabulary", g)
			}
			assert.LessOrEqual(t, len(plan.Keywords), 12)
			assert.NotEmpty(t, plan.Task)
			assert.NotEmpty(t, plan.SearchType)
			assert.GreaterOrEqual(t, plan.Confidence, 0.0)
			assert.LessOrEqual(t, plan.Confidence, 1.0)
		})
	}
}

func TestHeuristicPlanCounts(t *testing.T) {
	tests := []struct {
		name  string
		query string
		wantN int
	}{
		{"top_n", "top 5 thrillers", 5},
		{"leading_bare_count", "7 mind-bending sci-fi movies", 7},
		{"no_count_defaults", "moody neo-noir mysteries", 10},
		{"over_cap_clamped", "top 100 horror films", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := heuristicPlan(tt.query, 10)
			assert.Equal(t, tt.wantN, plan.N)
		})
	}
}

func TestHeuristicPlanTitleClassification(t *testing.T) {
	t.Run("similar_to_is_title_search", func(t *testing.T) {
		plan := heuristicPlan("movies similar to Gravity", 10)
		assert.Equal(t, SearchTitle, plan.SearchType)
		assert.Equal(t, TaskFindSimilar, plan.Task)
		assert.Equal(t, "Gravity", plan.CandidateTitle)
	})

	t.Run("like_is_title_search", func(t *testing.T) {
		plan := heuristicPlan("films like The Matrix", 10)
		assert.Equal(t, SearchTitle, plan.SearchType)
		assert.Equal(t, "The Matrix", plan.CandidateTitle)
	})

	t.Run("quoted_title_wins_over_length", func(t *testing.T) {
		plan := heuristicPlan(`what is the movie "Blade Runner" about exactly`, 10)
		assert.Equal(t, SearchTitle, plan.SearchType)
		assert.Equal(t, "Blade Runner", plan.CandidateTitle)
	})

	t.Run("short_query_is_title_search", func(t *testing.T) {
		plan := heuristicPlan("Blade Runner", 10)
		assert.Equal(t, SearchTitle, plan.SearchType)
		assert.Equal(t, "Blade Runner", plan.CandidateTitle)
	})

	t.Run("long_plot_query_is_plot_search", func(t *testing.T) {
		plan := heuristicPlan("movies about astronauts stranded alone in deep space", 10)
		assert.Equal(t, SearchPlot, plan.SearchType)
		assert.Empty(t, plan.CandidateTitle)
	})
}

func TestHeuristicPlanGenresAndConstraints(t *testing.T) {
	plan := heuristicPlan("sci-fi movies about time travel under 120 minutes", 10)

	assert.Contains(t, plan.Genres, "Science Fiction")
	require.NotEmpty(t, plan.SoftConstraints)
	assert.Contains(t, plan.SoftConstraints[0], "under 120")
	// Soft constraints must not leak into genre filters.
	assert.Len(t, plan.Genres, 1)

	assert.Contains(t, plan.Keywords, "time")
	assert.Contains(t, plan.Keywords, "travel")
	assert.NotContains(t, plan.Keywords, "movies")
	assert.NotContains(t, plan.Keywords, "about")
}

func TestHeuristicPlanListicleDefault(t *testing.T) {
	plan := heuristicPlan("cozy mystery movies", 7)
	assert.Equal(t, 7, plan.N, "defaultN should apply when no count is present")
}
