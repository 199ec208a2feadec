package pseudonymize

import "errors"

// Sentinel errors matching the engine's error-handling design. Each
// maps directly to one of the caller-facing error kinds: the HTTP
// layer translates these into the appropriate status code and body.
var (
	// ErrInputTooLarge is returned when text exceeds the configured cap.
	ErrInputTooLarge = errors.New("pseudonymize: input exceeds configured length cap")
	// ErrSessionQuotaExceeded is returned when a session has already
	// minted its configured maximum number of tokens.
	ErrSessionQuotaExceeded = errors.New("pseudonymize: session has reached its pseudonym quota")
	// ErrBindingFailed is returned when a cache write fails mid-mint.
	// Any partial reverse binding written during the failed mint is
	// best-effort rolled back before this is returned.
	ErrBindingFailed = errors.New("pseudonymize: binding write failed")
	// ErrKeyUnavailable is returned when the key service could not be
	// reached while minting a token. No partial bindings are left.
	ErrKeyUnavailable = errors.New("pseudonymize: key service unavailable")
)
