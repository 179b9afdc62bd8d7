package search

import (
	"strings"
	"unicode/utf8"
)

// georgianLetters lists the 33 letters of the modern Georgian alphabet in
// alphabetical order with their canonical Latin approximation. When two
// letters share an approximation (თ/ტ, ჩ/ჭ, ც/წ) the first one listed is
// the target of the inverse mapping.
var georgianLetters = []struct {
	letter rune
	latin  string
}{
	{'ა', "a"}, {'ბ', "b"}, {'გ', "g"}, {'დ', "d"}, {'ე', "e"},
	{'ვ', "v"}, {'ზ', "z"}, {'თ', "t"}, {'ი', "i"}, {'კ', "k"},
	{'ლ', "l"}, {'მ', "m"}, {'ნ', "n"}, {'ო', "o"}, {'პ', "p"},
	{'ჟ', "zh"}, {'რ', "r"}, {'ს', "s"}, {'ტ', "t"}, {'უ', "u"},
	{'ფ', "f"}, {'ქ', "q"}, {'ღ', "gh"}, {'ყ', "y"}, {'შ', "sh"},
	{'ჩ', "ch"}, {'ც', "ts"}, {'ძ', "dz"}, {'წ', "ts"}, {'ჭ', "ch"},
	{'ხ', "kh"}, {'ჯ', "j"}, {'ჰ', "h"},
}

// latinAlternates are phonetic spellings shoppers type for Georgian letters
// besides the canonical one.
var latinAlternates = map[string]rune{
	"w":  'ვ',
	"x":  'ხ',
	"c":  'ც',
	"ph": 'ფ',
}

// latinFolds maps accented Latin letters to their base letter
var latinFolds = map[rune]string{
	'á': "a", 'à': "a", 'ä': "a", 'â': "a", 'ã': "a", 'å': "a", 'ā': "a", 'ą': "a",
	'é': "e", 'è': "e", 'ë': "e", 'ê': "e", 'ē': "e", 'ę': "e", 'ě': "e",
	'í': "i", 'ì': "i", 'ï': "i", 'î': "i", 'ī': "i",
	'ó': "o", 'ò': "o", 'ö': "o", 'ô': "o", 'õ': "o", 'ø': "o", 'ō': "o", 'ő': "o",
	'ú': "u", 'ù': "u", 'ü': "u", 'û': "u", 'ū': "u", 'ů': "u", 'ű': "u",
	'ý': "y", 'ÿ': "y",
	'ñ': "n", 'ń': "n", 'ň': "n",
	'ç': "c", 'ć': "c", 'č': "c",
	'š': "s", 'ś': "s", 'ş': "s",
	'ž': "z", 'ź': "z", 'ż': "z",
	'ł': "l", 'đ': "d", 'ď': "d", 'ř': "r", 'ť': "t", 'ğ': "g",
	'ß': "ss", 'æ': "ae", 'œ': "oe",
}

var (
	georgianToLatin map[rune]string
	latinToGeorgian map[string]rune
	maxLatinKeyLen  int
)

func init() {
	georgianToLatin = make(map[rune]string, len(georgianLetters))
	latinToGeorgian = make(map[string]rune, len(georgianLetters)+len(latinAlternates))

	for _, l := range georgianLetters {
		georgianToLatin[l.letter] = l.latin
		if _, exists := latinToGeorgian[l.latin]; !exists {
			latinToGeorgian[l.latin] = l.letter
		}
	}
	for latin, letter := range latinAlternates {
		if _, exists := latinToGeorgian[latin]; !exists {
			latinToGeorgian[latin] = letter
		}
	}
	for latin := range latinToGeorgian {
		maxLatinKeyLen = max(maxLatinKeyLen, len(latin))
	}
}

// toGeorgian renders a normalized Latin skeleton in Georgian script, taking
// the longest matching Latin spelling at each position. Runes with no
// Georgian counterpart are copied as-is.
func toGeorgian(latin string) string {
	if latin == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(latin) * 3)

	for i := 0; i < len(latin); {
		matched := false
		for n := min(maxLatinKeyLen, len(latin)-i); n > 0; n-- {
			if letter, ok := latinToGeorgian[latin[i:i+n]]; ok {
				b.WriteRune(letter)
				i += n
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		// copy one whole rune so multi-byte passthrough text stays intact
		r, size := utf8.DecodeRuneInString(latin[i:])
		b.WriteRune(r)
		i += size
	}

	return b.String()
}
