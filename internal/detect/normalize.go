package detect

import "regexp"

// digitPairPattern matches two whitespace-separated digit runs, a
// shape OCR extraction commonly produces when a cedula or RUC number
// lands across a rendered column break.
var digitPairPattern = regexp.MustCompile(`\b(\d+)\s(\d+)\b`)

// NormalizeDigitRuns rejoins a single whitespace split inside a
// 10-13 digit identifier, defending against OCR artefacts that break
// a cedula or RUC number across a line or column. Layer 1 runs this
// pre-pass before scanning, and the engine substitutes against the
// same normalised text so the rejoined run, not the original split
// one, is what ends up in the tokenised output.
func NormalizeDigitRuns(text string) string {
	return digitPairPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := digitPairPattern.FindStringSubmatch(match)
		if groups == nil {
			return match
		}
		joined := groups[1] + groups[2]
		if len(joined) < 10 || len(joined) > 13 {
			return match
		}
		return joined
	})
}
