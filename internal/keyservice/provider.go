// Package keyservice implements the Cryptographic Key Service (KS): it
// holds the symmetric key used to protect reverse bindings and never
// lets it leave the process. Callers only ever see opaque,
// self-describing ciphertexts.
package keyservice

import (
	"context"
	"errors"
)

// Sentinel errors matching the engine's error-handling design.
var (
	// ErrKeyUnavailable indicates the backend could not be reached.
	ErrKeyUnavailable = errors.New("keyservice: key backend unavailable")
	// ErrKeyNotFound indicates the configured key name has not been provisioned
	// (encrypt) or the referenced key version was revoked (decrypt).
	ErrKeyNotFound = errors.New("keyservice: key not found")
	// ErrInvalidCiphertext indicates MAC verification failed on decrypt.
	ErrInvalidCiphertext = errors.New("keyservice: invalid ciphertext")
	// ErrPlaintextTooLarge indicates the input exceeded the 64 KiB bound.
	ErrPlaintextTooLarge = errors.New("keyservice: plaintext exceeds 64 KiB bound")
)

// MaxPlaintextBytes bounds the plaintext accepted by a single
// Encrypt call.
const MaxPlaintextBytes = 64 * 1024

// Provider is the interface every Key Service backend implements.
// Ciphertexts returned by Encrypt are opaque and self-describing: they
// carry whatever key id/version information Decrypt needs, so callers
// never track key versions themselves.
type Provider interface {
	Encrypt(ctx context.Context, plaintext []byte) (ciphertext string, err error)
	Decrypt(ctx context.Context, ciphertext string) (plaintext []byte, err error)
	Close() error
}

// New constructs a Provider from configuration. backend is one of
// "vault", "kms", "local".
func New(backend string, cfg Config) (Provider, error) {
	switch backend {
	case "vault":
		return newVaultTransitProvider(cfg)
	case "kms":
		return newKMSProvider(cfg)
	case "local", "":
		return newLocalProvider(cfg)
	default:
		return nil, errors.New("keyservice: unknown backend " + backend)
	}
}

// Config carries every field any backend might need; unused fields
// are ignored by backends that don't need them.
type Config struct {
	URL       string // vault: base address (e.g. https://vault.internal:8200)
	AuthToken string // vault: X-Vault-Token
	KeyName   string // vault/kms: key/transit-key name

	KMSKeyResourceName string // kms: fully qualified Cloud KMS key resource name

	LocalPassword string // local: PBKDF2 passphrase
}
