package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"reelsearch/llmclient"
	"reelsearch/textnorm"

	"go.uber.org/zap"
)

// planPayload is the exact JSON shape the extraction prompt demands. Decoded
// strictly: any violation rejects the whole response and the heuristic plan
// is used instead, never a partially-filled one.
type planPayload struct {
	Task            string   `json:"task"`
	N               int      `json:"n"`
	SearchType      string   `json:"searchType"`
	CandidateTitle  string   `json:"candidateTitle"`
	SemanticQuery   string   `json:"semanticQuery"`
	Genres          []string `json:"genres"`
	Keywords        []string `json:"keywords"`
	SoftConstraints []string `json:"softConstraints"`
	Confidence      float64  `json:"confidence"`
}

const intentSystemPrompt = `You turn a movie search request into a JSON retrieval plan with this exact shape:
{
  "task": "listicle|plain_search|find_similar",
  "n": 10,
  "searchType": "plot|title",
  "candidateTitle": "Gravity",
  "semanticQuery": "mind-bending science fiction with twist endings",
  "genres": ["Science Fiction"],
  "keywords": ["time", "travel", "twist"],
  "softConstraints": ["runtime under 120 minutes"],
  "confidence": 0.9
}

Rules:
- searchType is "title" when the request references a specific known movie ("similar to X", "like X", a quoted title, or a bare title); otherwise "plot". Set candidateTitle only for title searches.
- n is the requested result count. Default 10 when unstated. Never exceed 50.
- genres must come from this vocabulary only, mapping synonyms onto it (sci-fi/scifi/space/cyberpunk -> Science Fiction): %s.
- The corpus can filter on genre only. Anything else the user constrains (runtime, year, rating, actors) goes into softConstraints as free text, not into genres or keywords.
- keywords are short lexical search terms; semanticQuery is a fluent rephrasing for embedding search. They serve different engines, keep both.
- Respond with valid JSON only, no additional commentary.`

// parseIntent converts raw query text into a RetrievalPlan. The LLM path is
// attempted first; any transport, parse, or schema failure silently degrades
// to the deterministic heuristic. This function never fails outward.
func (e *Engine) parseIntent(ctx context.Context, rawQuery string, defaultN int) RetrievalPlan {
	plan, err := e.llmPlan(ctx, rawQuery, defaultN)
	if err != nil {
		e.logger.Warn("Intent extraction degraded to heuristic plan", zap.Error(err), zap.String("query", rawQuery))
		return heuristicPlan(rawQuery, defaultN)
	}
	return plan
}

func (e *Engine) llmPlan(ctx context.Context, rawQuery string, defaultN int) (RetrievalPlan, error) {
	system := fmt.Sprintf(intentSystemPrompt, strings.Join(textnorm.CanonicalGenres, ", "))
	temp := 0.0
	raw, err := e.llm.Complete(ctx, system, rawQuery, llmclient.FormatJSON, &temp)
	if err != nil {
		return RetrievalPlan{}, fmt.Errorf("intent completion: %w", err)
	}

	payload, err := decodePlanPayload(raw)
	if err != nil {
		return RetrievalPlan{}, err
	}

	plan := RetrievalPlan{
		Task:            TaskType(payload.Task),
		N:               payload.N,
		SearchType:      SearchType(payload.SearchType),
		CandidateTitle:  strings.TrimSpace(payload.CandidateTitle),
		SemanticQuery:   strings.TrimSpace(payload.SemanticQuery),
		Genres:          payload.Genres,
		Keywords:        payload.Keywords,
		SoftConstraints: payload.SoftConstraints,
		Confidence:      payload.Confidence,
	}
	plan.finalize(rawQuery, defaultN)
	return plan, nil
}

// decodePlanPayload validates the model output against the schema. Markdown
// fences around the JSON are tolerated; anything else non-conforming is not.
func decodePlanPayload(raw string) (planPayload, error) {
	var payload planPayload

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode plan payload: %w", err)
	}

	switch TaskType(payload.Task) {
	case TaskListicle, TaskPlainSearch, TaskFindSimilar:
	default:
		return payload, fmt.Errorf("invalid task %q", payload.Task)
	}
	switch SearchType(payload.SearchType) {
	case SearchPlot, SearchTitle:
	default:
		return payload, fmt.Errorf("invalid searchType %q", payload.SearchType)
	}
	if payload.N < 0 || payload.N > 1000 {
		return payload, fmt.Errorf("implausible result count %d", payload.N)
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		return payload, fmt.Errorf("confidence %f outside [0,1]", payload.Confidence)
	}
	if SearchType(payload.SearchType) == SearchTitle && strings.TrimSpace(payload.CandidateTitle) == "" {
		return payload, fmt.Errorf("title search without candidateTitle")
	}
	return payload, nil
}
