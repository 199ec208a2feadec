package pseudonymize

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// substitutionRegexCache avoids recompiling the same variant's regex
// every time it recurs across layers or repeated calls in one process.
var (
	substitutionRegexMu    sync.Mutex
	substitutionRegexCache = make(map[string]*regexp.Regexp)
)

// substitutionPattern builds the regex for one real value: escape
// metacharacters, then replace each literal space with a
// whitespace-class repeater so a line-broken occurrence still
// matches. Matching is case-insensitive for name-class values,
// case-sensitive otherwise.
//
// The pattern deliberately carries no \b assertions: RE2's \b is
// ASCII-only, so a value starting or ending with an accented letter
// ("Álvaro", "José") would never match at all and its occurrences
// would be left un-redacted. Word bounding is checked rune-wise at
// each match site by substituteValue instead.
func substitutionPattern(value string, nameClass bool) *regexp.Regexp {
	cacheKey := "s:" + value
	if nameClass {
		cacheKey = "i:" + value
	}

	substitutionRegexMu.Lock()
	defer substitutionRegexMu.Unlock()
	if re, ok := substitutionRegexCache[cacheKey]; ok {
		return re
	}

	escaped := regexp.QuoteMeta(value)
	pattern := strings.ReplaceAll(escaped, " ", `\s+`)
	if nameClass {
		pattern = `(?i)` + pattern
	}
	re := regexp.MustCompile(pattern)
	substitutionRegexCache[cacheKey] = re
	return re
}

// isWordRune reports whether r would extend a word: any letter or
// digit in any script, or underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// boundedBefore reports whether byte offset i in s sits at the start
// of the string or right after a non-word rune.
func boundedBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

// boundedAfter reports whether byte offset i in s sits at the end of
// the string or right before a non-word rune.
func boundedAfter(s string, i int) bool {
	if i == len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

// substituteValue replaces every whole-word occurrence of the literal
// value with token. Word bounds are verified rune-wise on both sides
// of each match (the regexp itself is unanchored — see
// substitutionPattern). Returns the substituted text and the number
// of occurrences replaced.
func substituteValue(text, value, token string, nameClass bool) (string, int) {
	re := substitutionPattern(value, nameClass)
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, 0
	}

	var b strings.Builder
	last, count := 0, 0
	for _, loc := range locs {
		if !boundedBefore(text, loc[0]) || !boundedAfter(text, loc[1]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(token)
		last = loc[1]
		count++
	}
	if count == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), count
}

// substituteVariants sweeps text for every variant in a bound token's
// accumulated variant set and replaces every remaining occurrence with
// token. Variants are applied in descending length order so a longer
// variant consumes its occurrence before a shorter variant
// (a bare surname) would otherwise claim only part of it. Called once
// per token after the detector loop has already substituted whichever
// full runs the layers independently matched, this is what catches a
// bound name's bare mention elsewhere in ordinary prose — a surname
// with no attached given name, nowhere near a header or signature
// block — that no detector layer ever proposes as its own span but
// that is already bound and so must not leak into the output.
func substituteVariants(text string, variants []string, token string, nameClass bool) (string, int) {
	sorted := make([]string, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	total := 0
	for _, v := range sorted {
		var count int
		text, count = substituteValue(text, v, token, nameClass)
		total += count
	}
	return text, total
}
