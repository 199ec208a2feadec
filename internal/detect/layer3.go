package detect

import (
	"regexp"
	"strings"
)

// signatureWindowChars is how much of the document's end Layer 3
// scans. Signature blocks (elaborated-by / reviewed-by / approved-by
// lines, or a professional title) sit at the tail of the document.
const signatureWindowChars = 2000

// signatureLabels are the phrases that introduce a signature line.
var signatureLabels = []string{
	`Elaborado\s+por`,
	`Revisado\s+por`,
	`Aprobado\s+por`,
}

// signatureTitles are professional titles that precede a name in a
// signature block even without one of the labels above.
var signatureTitles = []string{
	`Ing\.`, `Econ\.`, `Dr\.`, `Mgs\.`,
}

var signaturePatterns = buildSignaturePatterns()

func buildSignaturePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(signatureLabels)+len(signatureTitles))
	for _, label := range signatureLabels {
		patterns = append(patterns, regexp.MustCompile(`(?:`+label+`)\s*:?\s*([\p{L} \.]+)`))
	}
	for _, title := range signatureTitles {
		patterns = append(patterns, regexp.MustCompile(`\b(`+title+`\s*[\p{L} \.]+)`))
	}
	return patterns
}

// Layer3 is the signature-block detector: it matches the final
// signatureWindowChars characters of the document for labelled or
// titled signature lines. Matches are accepted without variant
// expansion since signature-block names are generally written
// contiguously and in one order.
type Layer3 struct{}

// NewLayer3 constructs the signature-block detector.
func NewLayer3() Layer3 { return Layer3{} }

// Name identifies this layer for stats and logging.
func (Layer3) Name() string { return "layer3" }

// Detect scans the document's final signatureWindowChars characters
// and keeps names of length at least minVariantLength.
func (Layer3) Detect(text string) []Span {
	window := text
	if len([]rune(window)) > signatureWindowChars {
		runes := []rune(window)
		window = string(runes[len(runes)-signatureWindowChars:])
	}

	var spans []Span
	seen := make(map[string]bool)
	for _, p := range signaturePatterns {
		for _, match := range p.FindAllStringSubmatch(window, -1) {
			value := strings.TrimSpace(match[1])
			value = strings.Trim(value, ".")
			value = strings.TrimSpace(value)
			if len([]rune(value)) < minVariantLength {
				continue
			}
			key := strings.ToLower(value)
			if seen[key] {
				continue
			}
			seen[key] = true
			spans = append(spans, Span{
				Type:  NOMBRE,
				Value: value,
				Layer: "layer3",
			})
		}
	}
	return spans
}
