package keyservice

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
)

const (
	kmsEnvelopePrefix = "kms:v1:"
	kmsDEKSize        = 32 // AES-256
)

// kmsClient abstracts the Cloud KMS calls this backend needs, so tests
// can substitute a fake without a live GCP project.
type kmsClient interface {
	Encrypt(ctx context.Context, req *kmspb.EncryptRequest) (*kmspb.EncryptResponse, error)
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest) (*kmspb.DecryptResponse, error)
	Close() error
}

type kmsClientWrapper struct {
	client *kms.KeyManagementClient
}

func (w *kmsClientWrapper) Encrypt(ctx context.Context, req *kmspb.EncryptRequest) (*kmspb.EncryptResponse, error) {
	return w.client.Encrypt(ctx, req)
}

func (w *kmsClientWrapper) Decrypt(ctx context.Context, req *kmspb.DecryptRequest) (*kmspb.DecryptResponse, error) {
	return w.client.Decrypt(ctx, req)
}

func (w *kmsClientWrapper) Close() error { return w.client.Close() }

// kmsProvider implements envelope encryption: a fresh AES-256-GCM data
// key is generated per call, the plaintext is sealed locally with it,
// and the data key itself is wrapped by Cloud KMS. Only the wrapped
// key ever leaves the process.
type kmsProvider struct {
	client  kmsClient
	keyName string
}

func newKMSProvider(cfg Config) (Provider, error) {
	if cfg.KMSKeyResourceName == "" {
		return nil, fmt.Errorf("keyservice: kms backend requires a key resource name")
	}
	client, err := kms.NewKeyManagementClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: creating KMS client: %v", ErrKeyUnavailable, err)
	}
	return &kmsProvider{
		client:  &kmsClientWrapper{client: client},
		keyName: cfg.KMSKeyResourceName,
	}, nil
}

func (p *kmsProvider) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	if len(plaintext) > MaxPlaintextBytes {
		return "", ErrPlaintextTooLarge
	}

	dek := make([]byte, kmsDEKSize)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return "", fmt.Errorf("%w: generating data key: %v", ErrKeyUnavailable, err)
	}

	nonce, sealed, err := aesGCMSeal(dek, plaintext)
	if err != nil {
		return "", err
	}

	wrapResp, err := p.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:      p.keyName,
		Plaintext: dek,
	})
	if err != nil {
		return "", fmt.Errorf("%w: KMS wrap failed: %v", ErrKeyUnavailable, err)
	}

	envelope := kmsEnvelopePrefix +
		base64.RawURLEncoding.EncodeToString(wrapResp.Ciphertext) + ":" +
		base64.RawURLEncoding.EncodeToString(nonce) + ":" +
		base64.RawURLEncoding.EncodeToString(sealed)
	return envelope, nil
}

func (p *kmsProvider) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ciphertext, kmsEnvelopePrefix)
	if !ok {
		return nil, ErrInvalidCiphertext
	}
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		return nil, ErrInvalidCiphertext
	}
	wrappedDEK, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	nonce, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	sealed, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	unwrapResp, err := p.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       p.keyName,
		Ciphertext: wrappedDEK,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: KMS unwrap failed: %v", ErrKeyNotFound, err)
	}

	return aesGCMOpen(unwrapResp.Plaintext, nonce, sealed)
}

func (p *kmsProvider) Close() error { return p.client.Close() }

func aesGCMSeal(key, plaintext []byte) (nonce, sealed []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	nonce = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: generating nonce: %v", ErrKeyUnavailable, err)
	}
	sealed = gcm.Seal(nil, nonce, plaintext, nil)
	return nonce, sealed, nil
}

func aesGCMOpen(key, nonce, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return plaintext, nil
}
