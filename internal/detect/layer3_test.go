package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayer3_DetectsElaboradoPor(t *testing.T) {
	l := NewLayer3()
	spans := l.Detect("Informe tecnico.\n\nElaborado por: Maria Fernanda Cueva\n")
	require.Contains(t, spansByType(spans, NOMBRE), "Maria Fernanda Cueva")
}

func TestLayer3_DetectsProfessionalTitle(t *testing.T) {
	l := NewLayer3()
	spans := l.Detect("Atentamente,\nIng. Pedro Andrade Salazar\n")
	found := false
	for _, v := range spansByType(spans, NOMBRE) {
		if v == "Ing. Pedro Andrade Salazar" {
			found = true
		}
	}
	require.True(t, found)
}

func TestLayer3_NoSpansWithoutExpand(t *testing.T) {
	l := NewLayer3()
	spans := l.Detect("Revisado por: Ana Gabriela Ruiz\n")
	for _, s := range spans {
		require.False(t, s.Expand)
	}
}

func TestLayer3_IgnoresTextBeforeWindow(t *testing.T) {
	l := NewLayer3()
	padding := make([]byte, signatureWindowChars+200)
	for i := range padding {
		padding[i] = 'x'
	}
	text := "Revisado por: Carlos Alberto Vega\n" + string(padding)
	spans := l.Detect(text)
	require.Empty(t, spansByType(spans, NOMBRE))
}

func TestLayer3_NameIsLayer3(t *testing.T) {
	require.Equal(t, "layer3", NewLayer3().Name())
}
