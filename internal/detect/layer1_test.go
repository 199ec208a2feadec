package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func spansByType(spans []Span, t EntityType) []string {
	var values []string
	for _, s := range spans {
		if s.Type == t {
			values = append(values, s.Value)
		}
	}
	return values
}

func TestLayer1_DetectsRUCBeforeCedula(t *testing.T) {
	l := NewLayer1()
	spans := l.Detect("RUC del contribuyente: 1792146739001.")
	require.Contains(t, spansByType(spans, RUC), "1792146739001")
	require.Empty(t, spansByType(spans, CEDULA))
}

func TestLayer1_DetectsCedula(t *testing.T) {
	l := NewLayer1()
	spans := l.Detect("Cedula 1712345678 del solicitante.")
	require.Contains(t, spansByType(spans, CEDULA), "1712345678")
}

func TestLayer1_DetectsEmail(t *testing.T) {
	l := NewLayer1()
	spans := l.Detect("Contacto: juan.perez@example.com.ec")
	require.Contains(t, spansByType(spans, EMAIL), "juan.perez@example.com.ec")
}

func TestLayer1_DetectsTelefono(t *testing.T) {
	l := NewLayer1()
	spans := l.Detect("Telefono: 022345678 / contactar en horario de oficina.")
	require.Contains(t, spansByType(spans, TELEFONO), "022345678")
}

func TestLayer1_DetectsDireccionIntersection(t *testing.T) {
	l := NewLayer1()
	spans := l.Detect("Domicilio en AMAZONAS Y PATRIA, EDIFICIO 12-A.")
	require.Contains(t, spansByType(spans, DIRECCION), "AMAZONAS Y PATRIA, EDIFICIO 12-A")
}

func TestLayer1_RejoinsSplitDigitRun(t *testing.T) {
	l := NewLayer1()
	spans := l.Detect("Cedula 171234 5678 del solicitante.")
	require.Contains(t, spansByType(spans, CEDULA), "1712345678")
}

func TestLayer1_NameIsLayer1(t *testing.T) {
	require.Equal(t, "layer1", NewLayer1().Name())
}
