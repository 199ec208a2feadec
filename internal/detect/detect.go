// Package detect implements the Detection Pipeline (DP): four ordered
// layers — deterministic patterns, header-context extraction,
// statistical NER, and signature-block matching — that scan a
// document for personal data and emit candidate spans.
//
// Each layer is a Detector implementing the same Detect(text) → []Span
// contract (a pipeline of detectors, not a subclass hierarchy). Layers
// never mint tokens or touch the cache; that is the Pseudonymisation
// Engine's job. A Detector only says "this text looks like a
// RUC/NOMBRE/etc at this position".
package detect

// EntityType is one of the closed set of personal-data categories.
type EntityType string

// The closed set of entity types, part of the external contract.
const (
	RUC       EntityType = "RUC"
	CEDULA    EntityType = "CEDULA"
	EMAIL     EntityType = "EMAIL"
	TELEFONO  EntityType = "TELEFONO"
	DIRECCION EntityType = "DIRECCION"
	NOMBRE    EntityType = "NOMBRE"
)

// NameClass reports whether t is matched case-insensitively for
// dedup/binding purposes. Only NOMBRE is name-class; every other
// entity type is id-class (case-sensitive).
func (t EntityType) NameClass() bool {
	return t == NOMBRE
}

// Span is one candidate detection: an entity type, the literal text
// matched, and the layer that produced it. Layers never decide
// whether a span is ultimately tokenised — that decision (exceptions,
// dedup, variant expansion) belongs to the engine.
type Span struct {
	Type  EntityType
	Value string
	Layer string

	// Expand marks whether this span's Value should be run through
	// variant expansion before substitution. Only header-context and
	// NER name detections expand; addresses, short phones, and
	// signature-block names substitute literally.
	Expand bool
}

// Detector is implemented by each of the four pipeline layers.
type Detector interface {
	// Name identifies the layer for stats and logging (e.g. "layer1").
	Name() string
	// Detect scans text and returns every candidate span found. It
	// does not consult any cache and does not mutate text.
	Detect(text string) []Span
}

// DegradableDetector is optionally implemented by a Detector whose
// underlying model can be unavailable. An absent model must be
// rejected gracefully, never silently accepted as unredacted text:
// the engine checks Available before calling
// Detect; when it reports false the layer is skipped, a warning is
// logged, and the call's result is marked degraded rather than
// treated as "this layer legitimately found nothing".
type DegradableDetector interface {
	Detector
	Available() bool
}
