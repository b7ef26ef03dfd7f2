package textnorm

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

// stopWords are dropped during keyword extraction. The list is intentionally
// small: it covers query scaffolding ("show me the best..."), not content.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
	"about": true, "from": true, "by": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "that": true, "this": true,
	"these": true, "those": true, "it": true, "its": true, "as": true,
	"me": true, "my": true, "i": true, "we": true, "you": true, "your": true,
	"movie": true, "movies": true, "film": true, "films": true, "flick": true,
	"show": true, "find": true, "give": true, "list": true, "some": true,
	"best": true, "good": true, "great": true, "top": true, "recommend": true,
	"recommended": true, "recommendation": true, "recommendations": true,
	"please": true, "want": true, "like": true, "similar": true,
}

var nonWordPattern = regexp.MustCompile(`[^a-z0-9'\- ]+`)

// Keywords extracts up to max lexical keywords from text: tokenize, lowercase,
// strip non-word characters, drop stop words, dedupe preserving order.
func Keywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	var tokens []string
	if doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithTagging(false)); err == nil {
		for _, tok := range doc.Tokens() {
			tokens = append(tokens, tok.Text)
		}
	} else {
		// Tokenizer failure degrades to whitespace splitting.
		tokens = strings.Fields(text)
	}

	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, max)
	for _, tok := range tokens {
		w := strings.TrimSpace(nonWordPattern.ReplaceAllString(strings.ToLower(tok), ""))
		w = strings.Trim(w, "'-")
		if len(w) < 2 || stopWords[w] || isNumeric(w) || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == max {
			break
		}
	}
	return out
}

// IsStopWord reports whether w is in the stop-word table.
func IsStopWord(w string) bool {
	return stopWords[strings.ToLower(w)]
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
