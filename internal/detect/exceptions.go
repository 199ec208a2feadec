package detect

import "strings"

// exceptions is the closed, compiled-in set of values that must never
// be tokenised regardless of which layer or entity type detected
// them, carried over from original_source's EXCEPCIONES set: regulator
// acronyms, Ecuadorian provinces/cities, and generic legal vocabulary
// a regulator document repeats constantly.
var exceptions = buildExceptionSet([]string{
	// Institutions / regulator acronyms.
	"ARCOTEL", "CAFI", "CTDG", "CCON", "DEDA", "CTRP", "CADF",

	// Ecuadorian cities.
	"QUITO", "GUAYAQUIL", "CUENCA", "AMBATO", "RIOBAMBA", "LOJA",
	"MACHALA", "PORTOVIEJO", "MANTA", "SANTO DOMINGO", "ESMERALDAS", "IBARRA",

	// Provinces.
	"PICHINCHA", "GUAYAS", "AZUAY", "TUNGURAHUA", "CHIMBORAZO",
	"MANABI", "EL ORO", "IMBABURA",

	// Generic legal vocabulary.
	"LEY ORGANICA", "CODIGO ORGANICO", "REGLAMENTO", "ESTATUTO",
	"REGISTRO OFICIAL", "MINISTERIO", "SECRETARIA",

	// Generic titles without an attached name.
	"DIRECTOR EJECUTIVO", "DIRECTOR TECNICO", "COORDINADOR TECNICO",
	"PROFESIONAL FINANCIERO", "RESPONSABLE", "TITULAR",

	// Systems and document types.
	"QUIPUX", "MEMORANDO", "OFICIO", "INFORME", "RESOLUCION",
	"SISTEMA DE GESTION DOCUMENTAL",
})

// excludedPhrases are full legal phrases that must never be tokenised
// even as a substring of a longer detected span, carried over from
// original_source's FRASES_EXCLUIDAS.
var excludedPhrases = []string{
	"LEY ORGANICA DE TELECOMUNICACIONES",
	"CODIGO ORGANICO ADMINISTRATIVO",
	"REGISTRO OFICIAL",
	"ESTATUTO ORGANICO DE GESTION",
	"AGENCIA DE REGULACION Y CONTROL",
	"DIRECCION TECNICA DE GESTION ECONOMICA",
	"COORDINACION TECNICA DE TITULOS HABILITANTES",
	"PROCEDIMIENTO ADMINISTRATIVO SANCIONADOR",
	"SISTEMA DE GESTION DOCUMENTAL",
	"NORMATIVA LEGAL VIGENTE",
	"REGISTRO PUBLICO DE TELECOMUNICACIONES",
	"UNIDAD DE DOCUMENTACION Y ARCHIVO",
	"GARANTIA DE FIEL CUMPLIMIENTO",
	"TITULOS HABILITANTES",
	"ESPECTRO RADIOELECTRICO",
}

// institutionalKeywords: a value containing any of these (as a
// whole word, case-insensitive) is rejected as an institution, not a
// person or place, regardless of which layer proposed it.
var institutionalKeywords = []string{
	"ARCOTEL", "DIRECCION", "COORDINACION", "UNIDAD",
	"REGLAMENTO", "LEY", "CODIGO", "ESTATUTO",
	"MINISTERIO", "SECRETARIA", "AGENCIA",
}

func buildExceptionSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[foldAccents(strings.ToUpper(v))] = true
	}
	return set
}

// IsException reports whether value must never be tokenised, applying
// the exact-match exception set, the excluded-phrase substrings, and
// the institutional-keyword whole-word check — in that order, the
// same three checks original_source's is_exception performs.
func IsException(value string) bool {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return false
	}
	upper := foldAccents(strings.ToUpper(clean))

	if exceptions[upper] {
		return true
	}
	for _, phrase := range excludedPhrases {
		if strings.Contains(upper, foldAccents(strings.ToUpper(phrase))) {
			return true
		}
	}
	for _, kw := range institutionalKeywords {
		if containsWord(upper, foldAccents(strings.ToUpper(kw))) {
			return true
		}
	}
	return false
}

// containsWord reports whether needle appears in haystack as a
// standalone word (surrounded by non-letter boundaries or string
// edges), so a name like "LEYNARDO" does not trip the "LEY" keyword
// (it isn't a whole-word match).
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		before := start == 0 || !isLetter(haystack[start-1])
		after := end == len(haystack) || !isLetter(haystack[end])
		if before && after {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// foldAccents strips the handful of accented vowels/ñ that appear in
// Ecuadorian Spanish regulator documents, so exception/keyword
// matching is accent-insensitive without pulling in a Unicode
// normalisation library for six letters.
func foldAccents(s string) string {
	replacer := strings.NewReplacer(
		"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ñ", "N",
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	)
	return replacer.Replace(s)
}
