package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayer1_5_CapturesPrestador(t *testing.T) {
	l := NewLayer1_5()
	spans := l.Detect("PRESTADOR O CONCESIONARIO: TELCONET S.A. REPRESENTANTE LEGAL: JUAN PEREZ")
	require.Contains(t, spansByType(spans, NOMBRE), "TELCONET S.A.")
	require.Contains(t, spansByType(spans, NOMBRE), "JUAN PEREZ")
}

func TestLayer1_5_StopsAtNextLabelWordBounded(t *testing.T) {
	l := NewLayer1_5()
	spans := l.Detect("Direccion: CIUDADELA LOS ROSALES, PROVINCIA DEL GUAYAS TELEFONO: 042345678")
	values := spansByType(spans, DIRECCION)
	require.Len(t, values, 1)
	require.Contains(t, values[0], "CIUDADELA LOS ROSALES")
	require.NotContains(t, values[0], "042345678")
}

func TestLayer1_5_StopsAtPunctuationOutsideValueClass(t *testing.T) {
	l := NewLayer1_5()
	spans := l.Detect("PRESTADOR O CONCESIONARIO: SANTOS ORELLANA ADRIAN ALEXANDER; notificado el 12 de mayo")
	values := spansByType(spans, NOMBRE)
	require.Len(t, values, 1)
	require.Equal(t, "SANTOS ORELLANA ADRIAN ALEXANDER", values[0])
}

func TestLayer1_5_StopsBeforeStopOnlyFieldLabel(t *testing.T) {
	l := NewLayer1_5()
	spans := l.Detect("PRESTADOR O CONCESIONARIO: SANTOS ORELLANA ADRIAN ALEXANDER\nRUC: 1791234567001")
	values := spansByType(spans, NOMBRE)
	require.Len(t, values, 1)
	require.Equal(t, "SANTOS ORELLANA ADRIAN ALEXANDER", values[0])
}

func TestLayer1_5_BridgesLineWrappedHeaderValue(t *testing.T) {
	l := NewLayer1_5()
	spans := l.Detect("REPRESENTANTE LEGAL: SANTOS ORELLANA ADRIAN\n   ALEXANDER\nDirección: AV. AMAZONAS N34-451")
	require.Contains(t, spansByType(spans, NOMBRE), "SANTOS ORELLANA ADRIAN ALEXANDER")
}

func TestLayer1_5_MarksNombreSpansExpand(t *testing.T) {
	l := NewLayer1_5()
	spans := l.Detect("REPRESENTANTE LEGAL: MARIA JOSE VELASCO")
	for _, s := range spans {
		if s.Type == NOMBRE {
			require.True(t, s.Expand)
		}
	}
}

func TestLayer1_5_WindowIsRuneBased(t *testing.T) {
	// Multibyte padding: well past the window in bytes but inside it
	// in runes. A byte-based cutoff would truncate mid-rune and lose
	// the label; the rune-based window must still capture the name.
	padding := strings.Repeat("ñ", headerWindowChars-40)
	l := NewLayer1_5()
	spans := l.Detect(padding + " REPRESENTANTE LEGAL: JOSÉ PÉREZ")
	require.Contains(t, spansByType(spans, NOMBRE), "JOSÉ PÉREZ")
}

func TestLayer1_5_IgnoresTextBeyondHeaderWindow(t *testing.T) {
	l := NewLayer1_5()
	padding := make([]byte, headerWindowChars+100)
	for i := range padding {
		padding[i] = 'x'
	}
	text := string(padding) + " REPRESENTANTE LEGAL: PEDRO MORA"
	spans := l.Detect(text)
	require.Empty(t, spansByType(spans, NOMBRE))
}

func TestLayer1_5_NameIsLayer1_5(t *testing.T) {
	require.Equal(t, "layer1.5", NewLayer1_5().Name())
}
