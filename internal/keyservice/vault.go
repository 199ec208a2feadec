package keyservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	vaultMountPath         = "transit"
	vaultHTTPClientTimeout = 30 * time.Second
	vaultTokenHeader       = "X-Vault-Token"
)

// vaultTransitProvider backs the Key Service with HashiCorp Vault's
// Transit secrets engine, speaking its HTTP API directly — two POST
// endpoints and a token header don't warrant an SDK. Ciphertexts are
// Vault's own self-describing "vault:v1:..." envelope format, so
// Decrypt needs nothing beyond the key name to reverse them.
type vaultTransitProvider struct {
	httpClient *http.Client
	addr       string
	token      string
	keyName    string
}

func newVaultTransitProvider(cfg Config) (Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("keyservice: vault backend requires a URL")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("keyservice: vault backend requires an auth token")
	}
	if cfg.KeyName == "" {
		return nil, fmt.Errorf("keyservice: vault backend requires a key name")
	}
	return &vaultTransitProvider{
		httpClient: &http.Client{Timeout: vaultHTTPClientTimeout},
		addr:       cfg.URL,
		token:      cfg.AuthToken,
		keyName:    cfg.KeyName,
	}, nil
}

type vaultAPIResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

func (p *vaultTransitProvider) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	if len(plaintext) > MaxPlaintextBytes {
		return "", ErrPlaintextTooLarge
	}
	url := fmt.Sprintf("%s/v1/%s/encrypt/%s", p.addr, vaultMountPath, p.keyName)
	reqBody, err := json.Marshal(map[string]string{
		"plaintext": base64.StdEncoding.EncodeToString(plaintext),
	})
	if err != nil {
		return "", fmt.Errorf("keyservice: marshal vault encrypt request: %w", err)
	}

	respBody, err := p.doRequest(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return "", err
	}

	var apiResp vaultAPIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("%w: invalid vault response: %v", ErrKeyUnavailable, err)
	}
	var data struct {
		Ciphertext string `json:"ciphertext"`
	}
	if err := json.Unmarshal(apiResp.Data, &data); err != nil {
		return "", fmt.Errorf("%w: invalid vault encrypt data: %v", ErrKeyUnavailable, err)
	}
	return data.Ciphertext, nil
}

func (p *vaultTransitProvider) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/%s/decrypt/%s", p.addr, vaultMountPath, p.keyName)
	reqBody, err := json.Marshal(map[string]string{"ciphertext": ciphertext})
	if err != nil {
		return nil, fmt.Errorf("keyservice: marshal vault decrypt request: %w", err)
	}

	respBody, err := p.doRequest(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, err
	}

	var apiResp vaultAPIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: invalid vault response: %v", ErrInvalidCiphertext, err)
	}
	var data struct {
		Plaintext string `json:"plaintext"`
	}
	if err := json.Unmarshal(apiResp.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: invalid vault decrypt data: %v", ErrInvalidCiphertext, err)
	}
	plaintext, err := base64.StdEncoding.DecodeString(data.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 plaintext: %v", ErrInvalidCiphertext, err)
	}
	return plaintext, nil
}

func (p *vaultTransitProvider) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrKeyUnavailable, err)
	}
	req.Header.Set(vaultTokenHeader, p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrKeyUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, nil
	case http.StatusNotFound:
		return nil, ErrKeyNotFound
	case http.StatusBadRequest:
		return nil, errors.Join(ErrInvalidCiphertext, fmt.Errorf("vault: %s", respBody))
	default:
		return nil, fmt.Errorf("%w: vault returned HTTP %d: %s", ErrKeyUnavailable, resp.StatusCode, respBody)
	}
}

func (p *vaultTransitProvider) Close() error { return nil }
