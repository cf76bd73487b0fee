// Package textfilter screens learner-facing text for words that do not belong
// in content written for grades 4 through 8, and suggests kid-safe swaps.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps each flagged word to its family-friendly alternative.
var replacements = map[string]string{
	"fuck": "fudge", "shit": "shoot", "damn": "dang", "hell": "heck", "crap": "crud",
	"ass": "butt", "piss": "ticked", "motherfucker": "mother-trucker", "goddamn": "gosh-dang",
	"jesus christ": "jeez", "christ": "crikey", "bullshit": "baloney", "horseshit": "nonsense",
	"dumbass": "dummy", "dipshit": "dummy", "smartass": "smarty", "badass": "tough",

	"bitch": "jerk", "bastard": "jerk", "dick": "jerk", "asshole": "jerk", "jackass": "jerk",
	"shithead": "jerk", "dickhead": "jerk", "prick": "jerk", "douche": "jerk", "douchebag": "jerk",

	"cock": "[censored]", "pussy": "[censored]", "tits": "[censored]", "boobs": "[censored]",
	"whore": "[censored]", "slut": "[censored]", "fag": "[censored]", "retard": "[censored]",
	"nigger": "[censored]", "nigga": "[censored]", "spic": "[censored]", "chink": "[censored]",
	"kike": "[censored]",
}

// Match is one flagged word found in a piece of text.
type Match struct {
	Word        string // the text as it appears, e.g. "Damn"
	Offset      int    // byte offset into the scanned text
	Replacement string // case-matched suggestion, e.g. "Dang"
}

type pattern struct {
	word        string
	replacement string
	re          *regexp.Regexp
}

// ProfanityFilter finds and replaces flagged words. It is safe for concurrent use.
type ProfanityFilter struct {
	patterns []pattern // longest word first, so phrases win over their parts
}

// NewProfanityFilter compiles the built-in word list.
func NewProfanityFilter() *ProfanityFilter {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	pf := &ProfanityFilter{patterns: make([]pattern, 0, len(words))}
	for _, w := range words {
		pf.patterns = append(pf.patterns, pattern{
			word:        w,
			replacement: replacements[w],
			// Whole words only, with an optional plural ending.
			re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `(?:e?s)?\b`),
		})
	}
	return pf
}

// FilterText replaces every flagged word in text with its alternative.
func (pf *ProfanityFilter) FilterText(text string) string {
	result := text
	for _, p := range pf.patterns {
		result = p.re.ReplaceAllStringFunc(result, func(match string) string {
			return suggest(p, match)
		})
	}
	return result
}

// ContainsProfanity reports whether text contains any flagged word.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, p := range pf.patterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// Scan returns every flagged word in text ordered by offset. Where a phrase
// and one of its words both match ("jesus christ" and "christ"), only the
// phrase is reported.
func (pf *ProfanityFilter) Scan(text string) []Match {
	type span struct{ start, end int }
	var taken []span
	overlaps := func(s span) bool {
		for _, t := range taken {
			if s.start < t.end && t.start < s.end {
				return true
			}
		}
		return false
	}

	var matches []Match
	for _, p := range pf.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			s := span{loc[0], loc[1]}
			if overlaps(s) {
				continue
			}
			taken = append(taken, s)
			word := text[s.start:s.end]
			matches = append(matches, Match{Word: word, Offset: s.start, Replacement: suggest(p, word)})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Offset < matches[j].Offset })
	return matches
}

// suggest builds the replacement for one match, carrying over a plural ending
// and the case pattern of the original.
func suggest(p pattern, match string) string {
	replacement := p.replacement
	if len(match) > len(p.word) && !strings.HasPrefix(replacement, "[") {
		replacement += strings.ToLower(match[len(p.word):])
	}
	return preserveCase(match, replacement)
}

// preserveCase applies the case pattern of original to replacement.
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: copy case rune by rune, lowercase past the end of original.
	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
