package pseudonymize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteValue_AccentedEdgesStillBound(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		value string
	}{
		{"trailing accent", "declarado por JOSÉ en el acta", "JOSÉ"},
		{"leading accent", "firma de ÁLVARO al pie", "ÁLVARO"},
		{"both edges accented", "la señora Íñiguez Ávila compareció", "Íñiguez Ávila"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, n := substituteValue(c.text, c.value, "NOMBRE_AB12CD34", true)
			require.Equal(t, 1, n)
			require.NotContains(t, out, c.value)
			require.Contains(t, out, "NOMBRE_AB12CD34")
		})
	}
}

func TestSubstituteValue_DoesNotMatchInsideWord(t *testing.T) {
	out, n := substituteValue("Mariana firma el acta", "Maria", "NOMBRE_AB12CD34", true)
	require.Equal(t, 0, n)
	require.Equal(t, "Mariana firma el acta", out)
}

func TestSubstituteValue_AccentedNeighbourIsNotABoundary(t *testing.T) {
	// "José" directly followed by an accented letter is part of a
	// longer word, not a standalone occurrence.
	out, n := substituteValue("Joséí no es un nombre completo", "José", "NOMBRE_AB12CD34", true)
	require.Equal(t, 0, n)
	require.Equal(t, "Joséí no es un nombre completo", out)
}

func TestSubstituteValue_BridgesLineBreak(t *testing.T) {
	out, n := substituteValue("MARÍA\n   JOSÉ firma", "MARÍA JOSÉ", "NOMBRE_AB12CD34", true)
	require.Equal(t, 1, n)
	require.Equal(t, "NOMBRE_AB12CD34 firma", out)
}

func TestSubstituteVariants_LongestFirst(t *testing.T) {
	variants := []string{"Santos", "Santos Orellana Adrian Alexander", "Santos Orellana"}
	out, n := substituteVariants("SANTOS ORELLANA ADRIAN ALEXANDER y luego santos", variants, "NOMBRE_AB12CD34", true)
	require.Equal(t, 2, n)
	require.Equal(t, "NOMBRE_AB12CD34 y luego NOMBRE_AB12CD34", out)
}
