package detect

import "strings"

// minVariantLength is the shortest a generated variant may be. Below
// this length a token is overwhelmingly a common Spanish connector
// (e.g. "DE", "LA") rather than a distinguishing piece of a name, so
// it is dropped rather than risk tokenising ordinary text.
const minVariantLength = 5

// ExpandVariants returns the variant set for a captured name, per the
// token-count rules:
//
//   - 4+ tokens: the first two tokens are treated as surnames, the
//     remainder as given names. Emits: original order, swapped
//     (given names first), surnames alone, given names alone, the
//     first surname alone, and the first given name alone.
//   - 3 tokens: emits the halves of both plausible splits, 2+1 and
//     1+2 (first-two/last-one, and first-one/last-two).
//   - 2 tokens: emits both orderings.
//   - 1 token: emits the token itself.
//
// Ecuadorian regulator documents write the same person two different
// ways in the same file — surnames-first in a header table ("SANTOS
// ORELLANA ADRIAN ALEXANDER") and given-first in body prose ("Adrián
// Alexander Santos") — with no shared full string between the two.
// Expanding both sides lets the shorter pieces collide (here, both
// expansions contain a standalone "Santos"), so the two mentions bind
// to one token during substitution instead of minting two.
//
// The result is deduplicated case-insensitively, preserving first
// occurrence, and variants shorter than minVariantLength are dropped.
func ExpandVariants(name string) []string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil
	}

	var candidates []string
	switch {
	case len(tokens) >= 4:
		surnames := tokens[:2]
		given := tokens[2:]
		candidates = append(candidates,
			strings.Join(tokens, " "),
			strings.Join(append(append([]string{}, given...), surnames...), " "),
			strings.Join(surnames, " "),
			strings.Join(given, " "),
			surnames[0],
			given[0],
		)
	case len(tokens) == 3:
		candidates = append(candidates,
			strings.Join(tokens, " "),
			strings.Join(tokens[:2], " "), tokens[2],
			tokens[0], strings.Join(tokens[1:], " "),
		)
	case len(tokens) == 2:
		candidates = append(candidates,
			strings.Join(tokens, " "),
			tokens[1]+" "+tokens[0],
		)
	default:
		candidates = append(candidates, tokens[0])
	}

	return dedupVariants(candidates)
}

func dedupVariants(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if len([]rune(c)) < minVariantLength {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
