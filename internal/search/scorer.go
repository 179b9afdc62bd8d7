package search

import (
	"math"
	"strings"

	"github.com/storefront/backend/internal/domain"
)

// Ladder contributions. All conditions that hold are added together.
const (
	exactMatchScore     = 100.0
	prefixMatchScore    = 80.0
	wordMatchScore      = 60.0
	substringMatchScore = 40.0

	fuzzyMinQueryLen    = 3
	fuzzyMinCoverage    = 0.7
	fuzzyCoverageWeight = 15.0
	fuzzyRunPoints      = 3.0
	fuzzyMaxRunBonus    = 9.0
)

// Field weights applied before taking the best field of an entry
const (
	weightName        = 1.0
	weightBrand       = 0.9
	weightCategory    = 0.5
	weightDescription = 0.5
)

// searchableFields lists entry fields in tie-break order
var searchableFields = [...]struct {
	name   string
	weight float64
}{
	{domain.FieldName, weightName},
	{domain.FieldBrand, weightBrand},
	{domain.FieldCategory, weightCategory},
	{domain.FieldDescription, weightDescription},
}

// ScoreField scores a normalized query against one normalized field.
// Zero means no match.
func ScoreField(query, field NormalizedText) float64 {
	return bestOfVariants(variantsOf(query), variantsOf(field))
}

// ScoreWords scores each query word independently against the field and
// sums the contributions, so partial multi-word matches still score.
func ScoreWords(queryWords []string, field NormalizedText) float64 {
	f := variantsOf(field)
	total := 0.0
	for _, word := range queryWords {
		total += bestOfVariants(Variants(word), f)
	}
	return total
}

// scoreQuery is the score of a whole query against one field: the phrase
// score plus, for multi-word queries, the sum of per-word scores.
func scoreQuery(q *Query, field *TextVariants) float64 {
	if q.IsEmpty() || field.IsEmpty() {
		return 0
	}
	total := bestOfVariants(q.phrase, *field)
	for _, word := range q.words {
		total += bestOfVariants(word, *field)
	}
	return total
}

// scoreEntry returns the best weighted field score of a prepared entry and
// the field that produced it
func scoreEntry(q *Query, e *preparedEntry) (float64, string) {
	best, matched := 0.0, ""
	for i := range searchableFields {
		raw := scoreQuery(q, &e.fields[i])
		if raw <= 0 {
			continue
		}
		weighted := raw * searchableFields[i].weight
		if weighted > best {
			best, matched = weighted, searchableFields[i].name
		}
	}
	return best, matched
}

// bestOfVariants compares same-script renderings and keeps the higher score.
// Several Latin spellings share one Georgian rendering (c and ts, ph and f),
// so only equal Latin skeletons count as an exact match.
func bestOfVariants(q, f TextVariants) float64 {
	exact := q.latin.text != "" && q.latin.text == f.latin.text
	latin := ladder(&q.latin, &f.latin, exact)
	georgian := ladder(&q.georgian, &f.georgian, exact)
	return math.Max(latin, georgian)
}

func ladder(q, f *preparedText, exact bool) float64 {
	if q.text == "" || f.text == "" {
		return 0
	}

	score := 0.0
	if exact {
		score += exactMatchScore
	}
	if strings.HasPrefix(f.text, q.text) {
		score += prefixMatchScore
	}
	if containsTokenSequence(f.tokens, q.tokens) {
		score += wordMatchScore
	}
	if strings.Contains(f.text, q.text) {
		score += substringMatchScore
	}
	score += fuzzyBonus(q.runes, f.tokenRunes)

	return score
}

// containsTokenSequence reports whether needle appears as consecutive whole
// tokens of haystack
func containsTokenSequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, token := range needle {
			if haystack[i+j] != token {
				continue outer
			}
		}
		return true
	}
	return false
}

// fuzzyBonus measures in-order character coverage of the query within each
// field token and rewards the best token when coverage exceeds the
// threshold. Walking per token keeps short queries from matching scattered
// letters across an entire description.
func fuzzyBonus(query []rune, tokens [][]rune) float64 {
	if len(query) < fuzzyMinQueryLen {
		return 0
	}

	best := 0.0
	for _, token := range tokens {
		coverage, longestRun := coverageIn(query, token)
		if coverage <= fuzzyMinCoverage {
			continue
		}
		bonus := coverage*fuzzyCoverageWeight + math.Min(float64(longestRun)*fuzzyRunPoints, fuzzyMaxRunBonus)
		best = math.Max(best, bonus)
	}
	return best
}

// coverageIn walks query runes in order, finding each one after the
// previous match. It returns the fraction found and the longest run of
// query runes matched at adjacent positions.
func coverageIn(query, field []rune) (float64, int) {
	matched, run, longest := 0, 0, 0
	next, last := 0, -2

	for _, r := range query {
		idx := indexRuneFrom(field, r, next)
		if idx < 0 {
			run, last = 0, -2
			continue
		}
		matched++
		if idx == last+1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		last, next = idx, idx+1
	}

	return float64(matched) / float64(len(query)), longest
}

func indexRuneFrom(s []rune, r rune, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == r {
			return i
		}
	}
	return -1
}
