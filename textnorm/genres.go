// Package textnorm holds the text-normalization tables and helpers used by
// query understanding: the canonical genre vocabulary, the genre synonym
// table, and stop-word based keyword extraction. Tables are data, not code,
// so both the LLM path and the heuristic fallback canonicalize identically.
package textnorm

import (
	"sort"
	"strings"
)

// TableVersion identifies the current revision of the normalization tables.
const TableVersion = "2025-08"

// CanonicalGenres is the closed vocabulary the corpus supports. Every genre
// emitted by query understanding is one of these strings.
var CanonicalGenres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Family",
	"Fantasy",
	"History",
	"Horror",
	"Music",
	"Mystery",
	"Romance",
	"Science Fiction",
	"Thriller",
	"War",
	"Western",
}

// genreSynonyms maps lowercase query substrings to canonical genres. Phrases
// must be lowercase; longer phrases are matched before shorter ones.
var genreSynonyms = map[string]string{
	"sci-fi":          "Science Fiction",
	"scifi":           "Science Fiction",
	"sci fi":          "Science Fiction",
	"science fiction": "Science Fiction",
	"space":           "Science Fiction",
	"cyberpunk":       "Science Fiction",
	"dystopian":       "Science Fiction",
	"rom-com":         "Romance",
	"romcom":          "Romance",
	"romantic":        "Romance",
	"love story":      "Romance",
	"scary":           "Horror",
	"slasher":         "Horror",
	"spooky":          "Horror",
	"cartoon":         "Animation",
	"animated":        "Animation",
	"anime":           "Animation",
	"whodunit":        "Mystery",
	"detective":       "Mystery",
	"noir":            "Mystery",
	"kids":            "Family",
	"children":        "Family",
	"funny":           "Comedy",
	"hilarious":       "Comedy",
	"docu":            "Documentary",
	"true crime":      "Crime",
	"heist":           "Crime",
	"gangster":        "Crime",
	"mob":             "Crime",
	"cowboy":          "Western",
	"suspense":        "Thriller",
	"historical":      "History",
	"biopic":          "History",
	"musical":         "Music",
	"sword and sorcery": "Fantasy",
	"superhero":         "Action",
	"martial arts":      "Action",
	"military":          "War",
}

var canonicalLower = func() map[string]string {
	m := make(map[string]string, len(CanonicalGenres))
	for _, g := range CanonicalGenres {
		m[strings.ToLower(g)] = g
	}
	return m
}()

// synonymsByLength holds the synonym keys longest-first so multi-word phrases
// win over their substrings.
var synonymsByLength = func() []string {
	keys := make([]string, 0, len(genreSynonyms))
	for k := range genreSynonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// CanonicalizeGenre maps a single free-form genre mention onto the canonical
// vocabulary. It tries case-insensitive exact equality first, then the
// synonym table by substring. Returns "" when nothing matches.
func CanonicalizeGenre(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if g, ok := canonicalLower[s]; ok {
		return g
	}
	if g, ok := genreSynonyms[s]; ok {
		return g
	}
	for _, key := range synonymsByLength {
		if strings.Contains(s, key) {
			return genreSynonyms[key]
		}
	}
	return ""
}

// CanonicalizeGenres maps a list of mentions onto the vocabulary, dropping
// unknowns and duplicates while preserving first-mention order.
func CanonicalizeGenres(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		g := CanonicalizeGenre(r)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// GenresInText scans free text for genre mentions via the same exact-word and
// synonym-substring rules the per-mention canonicalizer uses.
func GenresInText(text string) []string {
	s := strings.ToLower(text)
	seen := make(map[string]bool)
	var out []string
	add := func(g string) {
		if g != "" && !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	for lower, canonical := range canonicalLower {
		if containsWord(s, lower) {
			add(canonical)
		}
	}
	for _, key := range synonymsByLength {
		if strings.Contains(s, key) {
			add(genreSynonyms[key])
		}
	}
	sort.Strings(out)
	return out
}

// containsWord reports whether phrase occurs in s on word boundaries.
func containsWord(s, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
