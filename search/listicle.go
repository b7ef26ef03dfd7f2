package search

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "reelsearch/errors"
	"reelsearch/llmclient"

	"go.uber.org/zap"
)

// ListicleResult is the grounded listicle response for one query.
type ListicleResult struct {
	Source         string
	Seed           Seed
	Plan           RetrievalPlan
	N              int
	UsedCandidates int
	Items          []ListicleItem
}

const backfillReason = "High-ranking match from retrieval."

const listicleSystemPrompt = `You write short movie listicles grounded ONLY in the numbered candidate list provided.

Rules:
- Pick the best matches for the user's request from the candidates. Never invent a movie, fact, or plot detail that is not in the candidate list.
- Every item must cite its candidate with its number in square brackets, e.g. [3].
- If the user asked for something the candidate data cannot verify (runtime, year, ratings, actors), ignore that constraint rather than guessing.
- Output one item per line: "1. Title [3] — one-sentence reason grounded in the snippet."
- Output at most the requested number of items and nothing else.`

var (
	ordinalLinePattern = regexp.MustCompile(`^\s*(\d{1,2})[.)]\s+(.*)$`)
	citationPattern    = regexp.MustCompile(`\[#?(\d{1,2})\]`)
	separatorPattern   = regexp.MustCompile(`\s+(?:—|–|-|:)\s+`)
)

// Listicle runs the full pipeline for the listicle endpoint: parse intent,
// resolve seed, retrieve and fuse as in hybrid search, then drive a grounded
// generation over the top fused candidates and repair its output against
// them. A generation failure degrades to a backfill-only list.
func (e *Engine) Listicle(ctx context.Context, query string) (*ListicleResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidQuery
	}

	plan := e.parseIntent(ctx, query, e.cfg.ListicleDefaultN)
	seed := e.resolveSeed(ctx, plan)
	sides := e.retrieve(ctx, seed, plan.Genres, e.cfg.VectorDepth, e.cfg.BM25Depth)

	if err := modeFailure(ModeHybrid, sides); err != nil {
		return nil, err
	}

	fused := fuse(sides.vector, sides.bm25, e.cfg.HybridAlpha)

	candidates := fused
	if max := e.cfg.ListicleCandidates; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}

	items := e.generateItems(ctx, query, plan.N, candidates)
	items = backfill(items, plan.N, fused)

	return &ListicleResult{
		Source:         "rag-listicle",
		Seed:           seed,
		Plan:           plan,
		N:              plan.N,
		UsedCandidates: len(candidates),
		Items:          items,
	}, nil
}

// generateItems drives the generation step and parses its output. Any model
// failure returns an empty list; the caller backfills.
func (e *Engine) generateItems(ctx context.Context, query string, n int, candidates []FusedResult) []ListicleItem {
	if len(candidates) == 0 {
		return nil
	}

	user := fmt.Sprintf("Request: %s\nReturn up to %d items.\n\nCandidates:\n%s",
		query, n, e.contextBlock(candidates))

	temp := 0.3
	raw, err := e.llm.Complete(ctx, listicleSystemPrompt, user, llmclient.FormatText, &temp)
	if err != nil {
		e.logger.Warn("Listicle generation failed, falling back to retrieval ranking",
			zap.Error(err), zap.String("query", query))
		return nil
	}

	items := parseListicle(raw, candidates)
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// contextBlock renders the numbered evidence the generator may cite: index,
// title, genres, and a capped snippet.
func (e *Engine) contextBlock(candidates []FusedResult) string {
	maxChars := e.cfg.SnippetMaxChars
	if maxChars <= 0 {
		maxChars = 500
	}

	var b strings.Builder
	for i, c := range candidates {
		snippet := c.Snippet
		if len(snippet) > maxChars {
			snippet = snippet[:maxChars] + "..."
		}
		fmt.Fprintf(&b, "%d. %s [%s] %s\n", i+1, c.Title, strings.Join(c.Genres, ", "), snippet)
	}
	return b.String()
}

// parseListicle permissively extracts items from model output. Only lines
// with a leading ordinal are considered; a citation index is pulled from a
// [N] marker when present, with out-of-range citations treated as "no
// citation" rather than an error. Items must resolve back to a known
// candidate by citation or exact title match to count as valid.
func parseListicle(raw string, candidates []FusedResult) []ListicleItem {
	titleIndex := make(map[string]int, len(candidates))
	for i, c := range candidates {
		titleIndex[strings.ToLower(c.Title)] = i
	}

	var items []ListicleItem
	seenIDs := make(map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		m := ordinalLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[2])

		ref := 0
		if cm := citationPattern.FindStringSubmatch(body); cm != nil {
			if idx, err := strconv.Atoi(cm[1]); err == nil && idx >= 1 && idx <= len(candidates) {
				ref = idx
			}
			body = strings.TrimSpace(citationPattern.ReplaceAllString(body, ""))
		}

		title := body
		reason := ""
		if loc := separatorPattern.FindStringIndex(body); loc != nil {
			title = strings.TrimSpace(body[:loc[0]])
			reason = strings.TrimSpace(body[loc[1]:])
		}
		title = strings.Trim(title, `*"“”`)
		if title == "" {
			continue
		}

		// Resolve against the candidate set; uncited items survive only on
		// an exact title match.
		candIdx := -1
		if ref > 0 {
			candIdx = ref - 1
		} else if i, ok := titleIndex[strings.ToLower(title)]; ok {
			candIdx = i
			ref = i + 1
		}
		if candIdx < 0 {
			continue
		}

		cand := candidates[candIdx]
		if seenIDs[cand.ID] {
			continue
		}
		seenIDs[cand.ID] = true

		if reason == "" {
			reason = backfillReason
		}
		items = append(items, ListicleItem{
			ID:          cand.ID,
			Title:       cand.Title,
			Genres:      cand.Genres,
			Reason:      reason,
			CitationRef: ref,
		})
	}
	return items
}

// backfill appends fused-ranking entries, in order, until the list reaches n
// items or the pool is exhausted. Backfilled items carry citation 0 and a
// fixed generic reason; ids already present are skipped.
func backfill(items []ListicleItem, n int, fused []FusedResult) []ListicleItem {
	if len(items) >= n {
		return items[:n]
	}
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	for _, c := range fused {
		if len(items) >= n {
			break
		}
		if present[c.ID] {
			continue
		}
		present[c.ID] = true
		items = append(items, ListicleItem{
			ID:          c.ID,
			Title:       c.Title,
			Genres:      c.Genres,
			Reason:      backfillReason,
			CitationRef: 0,
		})
	}
	return items
}
