package pseudonymize

// Stats reports what one pseudonymize or depseudonymize call did.
type Stats struct {
	// DetectionsByLayer counts accepted (non-exception, non-duplicate)
	// spans contributed by each layer, keyed by layer name.
	DetectionsByLayer map[string]int `json:"detectionsByLayer,omitempty"`
	// TotalSubstitutions counts every occurrence replaced in the text,
	// across every variant of every bound value.
	TotalSubstitutions int `json:"totalSubstitutions"`
	// TotalUnique counts distinct tokens present in the returned mapping.
	TotalUnique int `json:"totalUnique"`
	// Missing lists tokens a depseudonymize call could not resolve,
	// because the binding was never written, has expired, or could not
	// be read from the cache or decrypted.
	Missing []string `json:"missing,omitempty"`
	// Degraded is true when a detector layer could not run (e.g. its
	// model was unavailable) and was skipped rather than blocking the
	// whole call.
	Degraded bool `json:"degraded,omitempty"`
}
