package consent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequireConfirmation_MissingSession(t *testing.T) {
	g := New()
	err := g.RequireConfirmation("", true)
	require.ErrorIs(t, err, ErrSessionMissing)
}

func TestRequireConfirmation_NotConfirmed(t *testing.T) {
	g := New()
	err := g.RequireConfirmation("sess-1", false)
	require.ErrorIs(t, err, ErrConsentMissing)
}

func TestRequireConfirmation_SessionMissingTakesPrecedence(t *testing.T) {
	g := New()
	err := g.RequireConfirmation("", false)
	require.ErrorIs(t, err, ErrSessionMissing)
}

func TestRequireConfirmation_Passes(t *testing.T) {
	g := New()
	err := g.RequireConfirmation("sess-1", true)
	require.NoError(t, err)
}
