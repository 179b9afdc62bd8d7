package search

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

// suggestMinWordLen is the shortest query word that gets corrections
const suggestMinWordLen = 3

type suggestion struct {
	term     string
	distance int
}

// Suggest proposes catalog vocabulary terms within maxDistance edits of the
// query words that do not already occur in the catalog. Results are ordered
// by edit distance, then alphabetically, and capped at limit.
func (s *Snapshot) Suggest(query string, maxDistance, limit int) []string {
	if maxDistance <= 0 || limit <= 0 {
		return nil
	}

	s.buildVocabulary()

	var found []suggestion
	seen := make(map[string]bool)

	for _, word := range Tokenize(Normalize(query)) {
		if utf8.RuneCountInString(word) < suggestMinWordLen {
			continue
		}
		if _, known := s.vocabSet[word]; known {
			continue
		}
		for _, term := range s.vocab {
			if seen[term] || !withinLengthOf(word, term, maxDistance) {
				continue
			}
			if d := levenshteinDistance(word, term); d <= maxDistance {
				found = append(found, suggestion{term: term, distance: d})
				seen[term] = true
			}
		}
	}

	slices.SortFunc(found, func(a, b suggestion) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return strings.Compare(a.term, b.term)
	})

	out := make([]string, 0, min(limit, len(found)))
	for _, sg := range found {
		if len(out) == limit {
			break
		}
		out = append(out, sg.term)
	}
	return out
}

// buildVocabulary collects the distinct tokens of names, brands and
// categories. Descriptions are left out; their wording is too noisy for
// corrections.
func (s *Snapshot) buildVocabulary() {
	s.vocabOnce.Do(func() {
		s.vocabSet = make(map[string]struct{})
		for i := range s.entries {
			for f := 0; f < 3; f++ {
				for _, token := range s.entries[i].fields[f].latin.tokens {
					if utf8.RuneCountInString(token) < suggestMinWordLen {
						continue
					}
					s.vocabSet[token] = struct{}{}
				}
			}
		}
		s.vocab = make([]string, 0, len(s.vocabSet))
		for term := range s.vocabSet {
			s.vocab = append(s.vocab, term)
		}
		slices.Sort(s.vocab)
	})
}

// withinLengthOf is a cheap pre-check: strings whose lengths differ by more
// than the threshold cannot be within it
func withinLengthOf(a, b string, threshold int) bool {
	diff := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
