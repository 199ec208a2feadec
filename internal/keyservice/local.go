package keyservice

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	localEnvelopePrefix = "local:v1:"
	localSaltSize       = 16
	localKeyIterations  = 100_000
	localKeySize        = 32 // AES-256
)

// localProvider is the development/test Key Service backend: AES-256-GCM
// with keys derived from a configured passphrase via PBKDF2. Each
// Encrypt draws a fresh random salt, so each call derives its own key.
// No key ever touches the network. The salt is embedded in the
// envelope so Decrypt can re-derive the same key.
type localProvider struct {
	passphrase string
}

func newLocalProvider(cfg Config) (Provider, error) {
	pass := cfg.LocalPassword
	if pass == "" {
		pass = "pseudo-pas-dev-key" // deterministic default for local/dev use only
	}
	return &localProvider{passphrase: pass}, nil
}

func (p *localProvider) Encrypt(_ context.Context, plaintext []byte) (string, error) {
	if len(plaintext) > MaxPlaintextBytes {
		return "", ErrPlaintextTooLarge
	}

	salt := make([]byte, localSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%w: generating salt: %v", ErrKeyUnavailable, err)
	}
	key := pbkdf2.Key([]byte(p.passphrase), salt, localKeyIterations, localKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generating nonce: %v", ErrKeyUnavailable, err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	envelope := localEnvelopePrefix +
		base64.RawURLEncoding.EncodeToString(salt) + ":" +
		base64.RawURLEncoding.EncodeToString(sealed)
	return envelope, nil
}

func (p *localProvider) Decrypt(_ context.Context, ciphertext string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ciphertext, localEnvelopePrefix)
	if !ok {
		return nil, ErrInvalidCiphertext
	}
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCiphertext
	}
	salt, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	sealed, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	key := pbkdf2.Key([]byte(p.passphrase), salt, localKeyIterations, localKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}
	nonce, data := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, errors.Join(ErrInvalidCiphertext, err)
	}
	return plaintext, nil
}

func (p *localProvider) Close() error { return nil }
