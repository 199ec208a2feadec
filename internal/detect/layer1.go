package detect

import "regexp"

// deterministicPattern pairs a compiled regex with the entity type it
// identifies. Order matters: RUC (13 digits) is checked before CEDULA
// (10 digits) so the more specific identifier class is named first.
type deterministicPattern struct {
	entityType EntityType
	re         *regexp.Regexp
}

var deterministicPatterns = []deterministicPattern{
	{RUC, regexp.MustCompile(`\b\d{13}\b`)},
	{CEDULA, regexp.MustCompile(`\b\d{10}\b`)},
	{EMAIL, regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)},
	{TELEFONO, regexp.MustCompile(`\b(?:\+593\s?)?0[2-9][0-9]{6,8}(?:\s?/\s?[0-9]{7,10})?\b`)},
	{DIRECCION, regexp.MustCompile(`\b[A-Z0-9]+\s+Y\s+[A-Z0-9]+,\s+(?:CASA|EDIFICIO|PISO|DEPARTAMENTO|LOCAL)\s+[A-Z0-9\-]+\b`)},
}

// Layer1 is the deterministic-pattern detector: RUC, CEDULA, EMAIL,
// TELEFONO, and intersection-form DIRECCION, applied to the full
// text. None of its spans are variant-expanded; structured
// identifiers substitute literally.
type Layer1 struct{}

// NewLayer1 constructs the deterministic-pattern detector.
func NewLayer1() Layer1 { return Layer1{} }

// Name identifies this layer for stats and logging.
func (Layer1) Name() string { return "layer1" }

// Detect runs NormalizeDigitRuns on text before scanning, then applies
// every deterministic pattern in fixed order.
func (Layer1) Detect(text string) []Span {
	text = NormalizeDigitRuns(text)

	var spans []Span
	for _, p := range deterministicPatterns {
		for _, match := range p.re.FindAllString(text, -1) {
			spans = append(spans, Span{
				Type:  p.entityType,
				Value: match,
				Layer: "layer1",
			})
		}
	}
	return spans
}
