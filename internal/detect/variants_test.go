package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandVariants_FourTokens(t *testing.T) {
	variants := ExpandVariants("SANTOS ORELLANA ADRIAN ALEXANDER")
	require.Contains(t, variants, "SANTOS ORELLANA ADRIAN ALEXANDER")
	require.Contains(t, variants, "ADRIAN ALEXANDER SANTOS ORELLANA")
	require.Contains(t, variants, "SANTOS ORELLANA")
	require.Contains(t, variants, "ADRIAN ALEXANDER")
	require.Contains(t, variants, "SANTOS")
	require.Contains(t, variants, "ADRIAN")
}

func TestExpandVariants_ThreeTokens(t *testing.T) {
	variants := ExpandVariants("Adrian Alexander Santos")
	require.Contains(t, variants, "Adrian Alexander Santos")
	require.Contains(t, variants, "Adrian Alexander")
	require.Contains(t, variants, "Santos")
	require.Contains(t, variants, "Adrian")
	require.Contains(t, variants, "Alexander Santos")
}

func TestExpandVariants_TwoTokens(t *testing.T) {
	variants := ExpandVariants("Ana Torres")
	require.Contains(t, variants, "Ana Torres")
	require.Contains(t, variants, "Torres Ana")
}

func TestExpandVariants_DropsShortTokens(t *testing.T) {
	variants := ExpandVariants("Yu Xi")
	for _, v := range variants {
		require.GreaterOrEqual(t, len([]rune(v)), minVariantLength, "variant %q shorter than minimum", v)
	}
}

func TestExpandVariants_DedupesCaseInsensitively(t *testing.T) {
	variants := ExpandVariants("Santos Santos")
	count := 0
	for _, v := range variants {
		if strings.EqualFold(v, "Santos Santos") {
			count++
		}
	}
	require.LessOrEqual(t, count, 1)
}

func TestExpandVariants_HeaderAndBodyShareAVariant(t *testing.T) {
	header := ExpandVariants("SANTOS ORELLANA ADRIAN ALEXANDER")
	body := ExpandVariants("Adrian Alexander Santos")

	headerSet := make(map[string]bool, len(header))
	for _, v := range header {
		headerSet[strings.ToLower(v)] = true
	}

	var shared bool
	for _, v := range body {
		if headerSet[strings.ToLower(v)] {
			shared = true
			break
		}
	}
	require.True(t, shared, "expected header and body variant sets to intersect")
}

func TestExpandVariants_EmptyInput(t *testing.T) {
	require.Nil(t, ExpandVariants(""))
	require.Nil(t, ExpandVariants("   "))
}
