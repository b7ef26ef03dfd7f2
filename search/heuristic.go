package search

import (
	"regexp"
	"strconv"
	"strings"

	"reelsearch/textnorm"
)

// The heuristic planner is the LLM-free fallback. It must stay deterministic
// and produce a usable plan for any input, including the empty string.

var (
	topNPattern      = regexp.MustCompile(`(?i)\btop\s+(\d{1,3})\b`)
	bareCountPattern = regexp.MustCompile(`^\s*(\d{1,2})\s+`)
	similarToPattern = regexp.MustCompile(`(?i)\b(?:similar\s+to|like)\s+(.+?)\s*$`)
	quotedPattern    = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	underPattern     = regexp.MustCompile(`(?i)\bunder\s+(\d+)\s*([a-z]*)`)
	runtimeUnitWords = map[string]string{"min": "runtime", "mins": "runtime", "minute": "runtime", "minutes": "runtime", "hours": "runtime", "hour": "runtime", "hr": "runtime", "hrs": "runtime"}
	listicleCueWords = []string{"list of", "listicle", "roundup", "ranking of"}
)

// heuristicPlan builds a RetrievalPlan from the raw query without any
// external calls. defaultN is used when no count can be extracted.
func heuristicPlan(rawQuery string, defaultN int) RetrievalPlan {
	query := strings.TrimSpace(rawQuery)
	plan := RetrievalPlan{
		Task:       TaskPlainSearch,
		SearchType: SearchPlot,
		Confidence: 0.4,
	}

	// Count: "top N" first, then a leading bare small integer ("7 mind-bending...").
	remaining := query
	if m := topNPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			plan.N = n
			plan.Task = TaskListicle
		}
		remaining = strings.TrimSpace(topNPattern.ReplaceAllString(remaining, ""))
	} else if m := bareCountPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			plan.N = n
			plan.Task = TaskListicle
		}
		remaining = strings.TrimSpace(bareCountPattern.ReplaceAllString(remaining, ""))
	}

	lower := strings.ToLower(query)
	for _, cue := range listicleCueWords {
		if strings.Contains(lower, cue) {
			plan.Task = TaskListicle
			break
		}
	}

	// Title classification: quoted substrings and "similar to / like X"
	// phrasing win over the short-query rule.
	if m := similarToPattern.FindStringSubmatch(query); m != nil {
		plan.Task = TaskFindSimilar
		plan.SearchType = SearchTitle
		plan.CandidateTitle = strings.TrimSpace(m[1])
	} else if m := quotedPattern.FindStringSubmatch(query); m != nil {
		plan.SearchType = SearchTitle
		title := m[1]
		if title == "" {
			title = m[2]
		}
		plan.CandidateTitle = strings.TrimSpace(title)
	} else if countTokens(remaining) > 0 && countTokens(remaining) <= 3 {
		plan.SearchType = SearchTitle
		plan.CandidateTitle = remaining
	}

	// Soft constraints: "under <number> [unit]" phrases the corpus schema
	// cannot enforce (runtime, year). Recorded, never used as hard filters.
	for _, m := range underPattern.FindAllStringSubmatch(query, -1) {
		unit := strings.ToLower(m[2])
		kind := runtimeUnitWords[unit]
		if kind == "" {
			if len(m[1]) == 4 {
				kind = "year"
			} else {
				kind = "numeric"
			}
		}
		constraint := kind + " under " + m[1]
		if unit != "" {
			constraint += " " + unit
		}
		plan.SoftConstraints = append(plan.SoftConstraints, constraint)
	}

	plan.Genres = textnorm.GenresInText(query)
	plan.Keywords = textnorm.Keywords(query, maxKeywords)
	plan.SemanticQuery = remaining

	plan.finalize(rawQuery, defaultN)
	return plan
}

func countTokens(s string) int {
	return len(strings.Fields(s))
}
