package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedText is text in canonical comparable form: lowercase, trimmed,
// single-spaced, without Latin diacritics and with Georgian letters
// transliterated to Latin.
type NormalizedText string

// String returns the normalized text as a plain string
func (t NormalizedText) String() string {
	return string(t)
}

// combiningDiacritic matches the Combining Diacritical Marks block
var combiningDiacritic = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
})

// Normalize converts arbitrary text to NormalizedText. It never fails;
// malformed UTF-8 becomes U+FFFD and unknown runes pass through unchanged.
// Normalize is idempotent.
func Normalize(text string) NormalizedText {
	if text == "" {
		return ""
	}

	text = strings.ToValidUTF8(text, string(unicode.ReplacementChar))
	text = strings.ToLower(text)
	text = stripDiacriticMarks(text)

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for i, word := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		for _, r := range word {
			if base, ok := latinFolds[r]; ok {
				b.WriteString(base)
				continue
			}
			if latin, ok := georgianToLatin[r]; ok {
				b.WriteString(latin)
				continue
			}
			b.WriteRune(r)
		}
	}

	return NormalizedText(b.String())
}

// stripDiacriticMarks decomposes text, drops combining accents and
// recomposes what is left. Transformers are stateful so one is built per call.
func stripDiacriticMarks(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(combiningDiacritic), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// Tokenize splits normalized text into words on every rune that is neither
// a letter nor a digit, so "air-max," yields ["air", "max"].
func Tokenize(text NormalizedText) []string {
	return strings.FieldsFunc(string(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
}

// preparedText caches what the scorer needs from one rendering of a string
type preparedText struct {
	text   string
	tokens []string
	// tokenRunes holds tokens decoded to runes for fuzzy coverage
	tokenRunes [][]rune
	runes      []rune
}

func prepare(text string) preparedText {
	tokens := Tokenize(NormalizedText(text))
	tokenRunes := make([][]rune, len(tokens))
	for i, token := range tokens {
		tokenRunes[i] = []rune(token)
	}
	return preparedText{
		text:       text,
		tokens:     tokens,
		tokenRunes: tokenRunes,
		runes:      []rune(text),
	}
}

// TextVariants holds the two renderings compared during scoring: the Latin
// skeleton and its Georgian-script expansion. Matching across alternate
// spellings (x/kh, w/v, c/ts, ph/f) happens in the Georgian rendering.
type TextVariants struct {
	latin    preparedText
	georgian preparedText
}

// Variants normalizes text and builds both renderings
func Variants(text string) TextVariants {
	return variantsOf(Normalize(text))
}

func variantsOf(normalized NormalizedText) TextVariants {
	latin := string(normalized)
	return TextVariants{
		latin:    prepare(latin),
		georgian: prepare(toGeorgian(latin)),
	}
}

// Latin returns the Latin skeleton
func (v TextVariants) Latin() NormalizedText {
	return NormalizedText(v.latin.text)
}

// Georgian returns the Georgian-script rendering of the Latin skeleton
func (v TextVariants) Georgian() string {
	return v.georgian.text
}

// IsEmpty reports whether the text normalized to nothing
func (v TextVariants) IsEmpty() bool {
	return v.latin.text == ""
}

// Query is a single search request's text in every form the scorer needs.
// It is built per call and discarded with the results.
type Query struct {
	Raw        string
	Normalized NormalizedText
	Words      []string

	phrase TextVariants
	words  []TextVariants
}

// NewQuery normalizes raw user input and splits it into whitespace-separated words
func NewQuery(raw string) Query {
	normalized := Normalize(raw)
	words := strings.Fields(string(normalized))

	q := Query{
		Raw:        raw,
		Normalized: normalized,
		Words:      words,
		phrase:     variantsOf(normalized),
	}
	if len(words) > 1 {
		q.words = make([]TextVariants, len(words))
		for i, word := range words {
			q.words[i] = variantsOf(NormalizedText(word))
		}
	}
	return q
}

// IsEmpty reports whether the query has nothing to search for
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}
