// Package consent implements the Consent Gate (CG): a stateless
// policy object that blocks any outbound extraction call unless an
// operator has explicitly confirmed the tokenised preview for that
// session.
//
// The gate holds no state and touches no cache — it only inspects the
// two values the workflow must already carry (session_id, confirmed)
// and either lets the call proceed or rejects it with an error that
// tells the caller exactly what step is missing.
package consent

import "errors"

// Sentinel errors matching the engine's error-handling design.
var (
	// ErrSessionMissing is returned when no session id accompanies the
	// extraction request — there is no preview to have been confirmed.
	ErrSessionMissing = errors.New("consent: session_id is required before an outbound extraction call")
	// ErrConsentMissing is returned when confirmed is not true.
	ErrConsentMissing = errors.New("consent: operator confirmation is required before an outbound extraction call")
)

// RequiredSteps lists the workflow steps an operator must complete
// before an extraction request will be accepted, in order. Callers
// surface this alongside ErrConsentMissing so a rejected request
// tells the operator exactly what is still missing.
var RequiredSteps = []string{
	"1. Submit the document text to POST /internal/pseudonymize to obtain a session_id and a tokenised preview.",
	"2. Visually review the rendered preview and confirm that every personal identifier has been replaced by a token.",
	"3. Resubmit the extraction request with the same session_id and confirmed=true.",
}

// LegalBasis cites the personal-data-protection articles the
// rejection response enumerates alongside RequiredSteps.
const LegalBasis = "Ley Orgánica de Protección de Datos Personales (Ecuador), arts. 7 (consentimiento), 9 (datos sensibles), 30 (medidas de seguridad)"

// Gate enforces the consent policy. The zero value is ready to use —
// it carries no configuration and no state; it exists as a type only
// so the policy has a stable call surface to inject and mock.
type Gate struct{}

// New constructs a Gate. It takes no arguments because the policy has
// no configuration: it is a pure function of its two inputs.
func New() *Gate {
	return &Gate{}
}

// RequireConfirmation asserts that sessionID is non-empty and
// confirmed is true. It consults no cache and performs no I/O: a
// session that has since expired is still a policy pass here — the
// operator's job is to confirm promptly, not the gate's job to check
// freshness.
func (g *Gate) RequireConfirmation(sessionID string, confirmed bool) error {
	if sessionID == "" {
		return ErrSessionMissing
	}
	if !confirmed {
		return ErrConsentMissing
	}
	return nil
}
