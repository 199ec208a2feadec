package detect

import (
	"regexp"
	"strings"
)

// headerWindowChars is how much of the document's start Layer 1.5
// scans. Ecuadorian regulator forms place the subject's identity
// fields in a fixed-format header table near the top of the document;
// body prose past this point is left to Layer 2's statistical pass.
const headerWindowChars = 1500

// nameClassPattern is the character class admitted inside a captured
// name/corporate-name value: letters (including accented vowels and
// ñ/Ñ), digits, hyphen, dot, ampersand, comma, and forward-slash, wide
// enough to admit a company name like "TELCO DEL PACIFICO S.A.".
const nameClassPattern = `[\p{L}0-9\.\-&,/ ]+?`

// addressClassPattern is looser than the name class: it additionally
// admits the punctuation an Ecuadorian street address uses.
const addressClassPattern = `[\p{L}0-9\.\-&,/° ]+?`

// headerLabels are the labels Layer 1.5 captures a value after.
var headerLabels = []string{
	`PRESTADOR\s+O\s+CONCESIONARIO`,
	`Poseedor\s+o\s+no\s+de\s+T[ií]tulo\s+Habilitante`,
	`REPRESENTANTE\s+LEGAL`,
	`Direcci[oó]n`,
	`TEL[EÉ]FONO`,
}

// stopOnlyLabels are field labels these headers also carry. Layer 1.5
// never captures after them (Layer 1's deterministic patterns own
// their values), but a capture running up against one must stop there
// instead of swallowing the label into the captured name or address.
var stopOnlyLabels = []string{
	`RUC`,
	`C[EÉ]DULA`,
	`CORREO(?:\s+ELECTR[OÓ]NICO)?`,
	`EXPEDIENTE`,
	`FECHA`,
}

func headerStopLookahead() string {
	alternatives := make([]string, 0, len(headerLabels)+len(stopOnlyLabels))
	alternatives = append(alternatives, headerLabels...)
	alternatives = append(alternatives, stopOnlyLabels...)
	// \b on both ends of the label alternative so a label prefix inside
	// ordinary address text (CIUDADELA, PROVINCIA DEL GUAYAS) does not
	// terminate the capture early. A capture also ends at the first
	// character no value class admits (a semicolon, a colon, a
	// parenthesis) or at the end of the window, so a header field
	// followed by running prose still matches.
	return `(?:\b(?:` + strings.Join(alternatives, "|") + `)\b|[^\p{L}0-9\.\-&,/° ]|$)`
}

type headerCapture struct {
	entityType EntityType
	re         *regexp.Regexp
}

var headerCaptures = buildHeaderCaptures()

func buildHeaderCaptures() []headerCapture {
	stop := headerStopLookahead()
	return []headerCapture{
		{NOMBRE, regexp.MustCompile(`\bPRESTADOR\s+O\s+CONCESIONARIO\s*:?\s*(` + nameClassPattern + `)` + stop)},
		{NOMBRE, regexp.MustCompile(`\bPoseedor\s+o\s+no\s+de\s+T[ií]tulo\s+Habilitante\s*:?\s*(` + nameClassPattern + `)` + stop)},
		{NOMBRE, regexp.MustCompile(`\bREPRESENTANTE\s+LEGAL\s*:?\s*(` + nameClassPattern + `)` + stop)},
		{DIRECCION, regexp.MustCompile(`\bDirecci[oó]n\s*:?\s*(` + addressClassPattern + `)` + stop)},
		{TELEFONO, regexp.MustCompile(`\bTEL[EÉ]FONO\s*:?\s*(` + nameClassPattern + `)` + stop)},
	}
}

// collapseWhitespace replaces every run of whitespace, including
// newlines, with a single space, the exact transform Layer 1.5 runs
// before scanning so a label and its value surviving a line wrap
// still read as one contiguous string.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Layer1_5 is the header-context detector: named captures for the
// identity fields Ecuadorian regulator forms place near the top of
// the document.
type Layer1_5 struct{}

// NewLayer1_5 constructs the header-context detector.
func NewLayer1_5() Layer1_5 { return Layer1_5{} }

// Name identifies this layer for stats and logging.
func (Layer1_5) Name() string { return "layer1.5" }

// Detect scans the first headerWindowChars characters of the
// whitespace-collapsed text for labelled identity fields. NOMBRE
// captures are marked Expand so the engine runs them through variant
// expansion before binding and substitution; DIRECCION and TELEFONO
// captures are left literal.
func (Layer1_5) Detect(text string) []Span {
	collapsed := collapseWhitespace(text)
	window := collapsed
	if runes := []rune(window); len(runes) > headerWindowChars {
		window = string(runes[:headerWindowChars])
	}

	var spans []Span
	for _, c := range headerCaptures {
		for _, match := range c.re.FindAllStringSubmatch(window, -1) {
			value := strings.TrimSpace(match[1])
			if value == "" {
				continue
			}
			spans = append(spans, Span{
				Type:   c.entityType,
				Value:  value,
				Layer:  "layer1.5",
				Expand: c.entityType == NOMBRE,
			})
		}
	}
	return spans
}
