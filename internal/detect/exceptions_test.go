package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsException_ExactMatch(t *testing.T) {
	require.True(t, IsException("ARCOTEL"))
	require.True(t, IsException("quito"))
}

func TestIsException_ExcludedPhraseSubstring(t *testing.T) {
	require.True(t, IsException("según la Ley Organica de Telecomunicaciones vigente"))
}

func TestIsException_InstitutionalKeyword(t *testing.T) {
	require.True(t, IsException("Direccion de Asuntos Regulatorios"))
}

func TestIsException_DoesNotFlagOrdinaryName(t *testing.T) {
	require.False(t, IsException("Juan Carlos Perez Mora"))
}

func TestIsException_KeywordRequiresWholeWord(t *testing.T) {
	require.False(t, IsException("Leynardo Solis"))
}

func TestIsException_EmptyInput(t *testing.T) {
	require.False(t, IsException(""))
	require.False(t, IsException("   "))
}
