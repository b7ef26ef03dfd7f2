package search

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	instructionPhrasePattern = regexp.MustCompile(`(?i)\b(?:top\s+\d+|similar\s+to|movies?|films?|best|recommended|recommendations?|list|show(?:\s+me)?|find|like)\b`)
	multiSpacePattern        = regexp.MustCompile(`\s{2,}`)
)

// cleanTitlePhrase strips instruction words from a candidate title phrase so
// "top 5 movies like Gravity" resolves against the corpus as "Gravity".
func cleanTitlePhrase(phrase string) string {
	cleaned := instructionPhrasePattern.ReplaceAllString(phrase, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	return strings.Trim(strings.TrimSpace(cleaned), `"“”'`)
}

// resolveSeed turns the plan into the text retrieval runs against. For title
// searches it resolves the best-matching corpus document and seeds with its
// stored text; a miss or lookup failure is a mode downgrade to the semantic
// query, never an error.
func (e *Engine) resolveSeed(ctx context.Context, plan RetrievalPlan) Seed {
	fallback := Seed{Text: plan.SemanticQuery}
	if fallback.Text == "" {
		fallback.Text = plan.CandidateTitle
	}

	if plan.SearchType != SearchTitle {
		return fallback
	}

	phrase := cleanTitlePhrase(plan.CandidateTitle)
	if phrase == "" {
		return fallback
	}

	hit, err := e.store.FindBestTitle(ctx, phrase)
	if err != nil {
		e.logger.Warn("Title resolution failed, downgrading to plot search",
			zap.Error(err), zap.String("phrase", phrase))
		return fallback
	}
	if hit == nil {
		e.logger.Debug("No title match for phrase, downgrading to plot search",
			zap.String("phrase", phrase))
		return fallback
	}

	text := hit.Overview
	if strings.TrimSpace(text) == "" {
		text = hit.Title
	}
	return Seed{ID: hit.ID, Title: hit.Title, Text: text}
}
