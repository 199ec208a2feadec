package detect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// acronymWhitelist holds all-uppercase tokens that must survive the
// title-case preprocessing pass untouched: regulator and institution
// codes that a title-cased rendering would otherwise mangle into
// something the NER candidate regex can't recognise as an acronym.
var acronymWhitelist = map[string]bool{
	"ARCOTEL": true, "SRI": true, "SENAE": true, "IESS": true,
	"RUC": true, "IVA": true, "ISD": true, "CNT": true,
	"ONU": true, "OEA": true, "UIT": true, "CONATEL": true,
	"CAFI": true, "CTDG": true, "CCON": true, "DEDA": true,
	"CTRP": true, "CADF": true, "SA": true, "CIA": true,
	"LTDA": true,
}

// allCapsWordPattern matches a run of three or more uppercase letters
// — the all-uppercase tokens the preprocessing pass title-cases
// (tokens of two letters or fewer are left alone: initials,
// connectors, and the like). Runs are word-bounded rune-wise in code,
// not with \b: RE2's \b is ASCII-only and would never close a run
// ending in an accented letter ("JOSÉ", "MARÍA").
var allCapsWordPattern = regexp.MustCompile(`[\p{Lu}]{3,}`)

// titleCaseAllCaps converts every all-uppercase word longer than two
// characters to title case, except words in acronymWhitelist. Many
// source documents are rendered almost entirely in uppercase, which
// degrades a statistical NER model significantly; this pass recovers
// the casing signal the model relies on to find person names.
func titleCaseAllCaps(text string) string {
	locs := allCapsWordPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if !boundedBefore(text, loc[0]) || !boundedAfter(text, loc[1]) {
			continue
		}
		word := text[loc[0]:loc[1]]
		b.WriteString(text[last:loc[0]])
		if acronymWhitelist[word] {
			b.WriteString(word)
		} else {
			b.WriteString(toTitleWord(word))
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
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

func toTitleWord(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	var b strings.Builder
	b.WriteRune(unicode.ToUpper(runes[0]))
	for _, r := range runes[1:] {
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// nerCandidatePattern finds runs of 2 to 5 title-case words: a
// capitalised letter followed by one or more lowercase letters, a
// shape any real PER entity retains even after titleCaseAllCaps.
// Unanchored for the same reason as allCapsWordPattern; Detect
// verifies the word bounds rune-wise at each match site.
var nerCandidatePattern = regexp.MustCompile(`\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+){1,4}`)

// nerInstitutionalKeywords reject a candidate whose text names an
// office, law, or system rather than a person, translated from the
// Spanish NER rejection filter this layer is modelled on.
var nerInstitutionalKeywords = []string{
	"direccion", "coordinacion", "unidad", "tecnica", "administrativa",
	"financiera", "gestion", "control", "registro", "agencia",
	"ministerio", "secretaria", "departamento", "division",
	"ley", "reglamento", "codigo", "estatuto", "manual",
	"servicio", "sistema", "procedimiento", "proceso",
	"arcotel", "telecomunicaciones", "titulos", "habilitantes",
	"organica", "administrativo", "sancionador", "certificacion",
	"remision", "elaborar", "certifico", "certificar", "quinta",
	"documental", "quipux", "equinoccial", "provincia",
}

// nerVerbs reject a candidate containing a common administrative verb
// form, which marks the phrase as a clause rather than a name.
var nerVerbs = []string{
	"elaborar", "certificar", "certifico", "remitir", "enviar",
	"solicitar", "aprobar", "rechazar", "validar", "verificar",
}

// nerForbiddenChars reject a candidate containing layout artefacts:
// arrows, bullets, and control characters that bleed into extracted
// text around list items and diagrams.
var nerForbiddenChars = []string{"→", "←", "•", "○", "●", "\n", "\t"}

// nerShortWordWhitelist are the only words shorter than three
// characters a candidate may contain: titles and Spanish connectors
// that legitimately appear inside a person's full name.
var nerShortWordWhitelist = map[string]bool{
	"ing": true, "dr": true, "sr": true, "sra": true, "ab": true,
	"de": true, "la": true, "y": true,
}

// isLikelyPersonName applies the rejection filter a Layer 2 candidate
// must pass, modelled on original_source's es_nombre_real: reject
// institutional vocabulary, administrative verbs, out-of-range word
// count or length, layout artefacts, and any word under three
// characters outside the short-word whitelist.
func isLikelyPersonName(candidate string) bool {
	clean := strings.TrimSpace(candidate)
	lower := foldAccents(strings.ToLower(clean))

	for _, kw := range nerInstitutionalKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, v := range nerVerbs {
		if strings.Contains(lower, v) {
			return false
		}
	}

	words := strings.Fields(clean)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	if n := len([]rune(clean)); n < 10 || n > 60 {
		return false
	}
	for _, ch := range nerForbiddenChars {
		if strings.Contains(clean, ch) {
			return false
		}
	}
	for _, w := range words {
		trimmed := strings.Trim(w, ".,;:")
		if !nerShortWordWhitelist[strings.ToLower(trimmed)] && len([]rune(trimmed)) < 3 {
			return false
		}
	}
	return true
}

// Layer2 is the statistical NER detector: a heuristic Title-Case
// sequence tagger standing in for a Spanish PER-entity recognizer,
// since no named-entity recognition library exists for Go. Accepted
// candidates are marked Expand so the engine variant-expands them
// before binding, exactly like Layer 1.5.
type Layer2 struct{}

// NewLayer2 constructs the statistical NER detector.
func NewLayer2() Layer2 { return Layer2{} }

// Name identifies this layer for stats and logging.
func (Layer2) Name() string { return "layer2" }

// Available always reports true: the heuristic tagger has no backing
// model to load, so it cannot go unavailable the way a remote backend
// (RemoteLayer2) can.
func (Layer2) Available() bool { return true }

// Detect title-cases all-uppercase runs, scans for Title-Case word
// sequences, and keeps only candidates that pass isLikelyPersonName.
func (Layer2) Detect(text string) []Span {
	normalized := titleCaseAllCaps(text)

	var spans []Span
	seen := make(map[string]bool)
	for _, loc := range nerCandidatePattern.FindAllStringIndex(normalized, -1) {
		if !boundedBefore(normalized, loc[0]) || !boundedAfter(normalized, loc[1]) {
			continue
		}
		// A candidate may span a line break (the pattern's \s+ bridges
		// it); collapse internal whitespace so the rejection filter and
		// the substitution value both see one contiguous name. The
		// substitution regex bridges whitespace again on its side, so
		// the line-broken original still matches.
		candidate := strings.Join(strings.Fields(normalized[loc[0]:loc[1]]), " ")
		key := strings.ToLower(candidate)
		if seen[key] {
			continue
		}
		if !isLikelyPersonName(candidate) {
			continue
		}
		seen[key] = true
		spans = append(spans, Span{
			Type:   NOMBRE,
			Value:  candidate,
			Layer:  "layer2",
			Expand: true,
		})
	}
	return spans
}
