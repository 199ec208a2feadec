package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Zerausir/pseudo-pas/internal/consent"
	"github.com/Zerausir/pseudo-pas/internal/keyservice"
	"github.com/Zerausir/pseudo-pas/internal/pseudonymize"
	"github.com/Zerausir/pseudo-pas/internal/sessioncache"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := sessioncache.NewFromClient(client)
	t.Cleanup(func() { cache.Close() })

	keys, err := keyservice.New("local", keyservice.Config{LocalPassword: "test-pass"})
	require.NoError(t, err)

	engine := pseudonymize.New(pseudonymize.Options{
		Cache:                   cache,
		Keys:                    keys,
		TTL:                     time.Hour,
		MaxTextLength:           100_000,
		MaxPseudonymsPerSession: 1000,
	})

	return New(Options{Engine: engine, Gate: consent.New()})
}

func TestHandlePseudonymize_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	body, _ := json.Marshal(map[string]string{
		"text":       "RUC: 1791234567001; contacto: ejemplo@correo.ec",
		"session_id": "sess-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/internal/pseudonymize", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp pseudonymizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "sess-1", resp.SessionID)
	require.Equal(t, 2, resp.PseudonymsCount)

	depBody, _ := json.Marshal(map[string]string{
		"text":       resp.PseudonymizedText,
		"session_id": "sess-1",
	})
	depReq := httptest.NewRequest(http.MethodPost, "/internal/depseudonymize", bytes.NewReader(depBody))
	depRec := httptest.NewRecorder()
	handler.ServeHTTP(depRec, depReq)

	require.Equal(t, http.StatusOK, depRec.Code)
	var depResp depseudonymizeResponse
	require.NoError(t, json.Unmarshal(depRec.Body.Bytes(), &depResp))
	require.Equal(t, "RUC: 1791234567001; contacto: ejemplo@correo.ec", depResp.OriginalText)
}

func TestHandleExtract_RejectsWithoutConfirmation(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	body, _ := json.Marshal(map[string]any{
		"files":      []string{"doc.pdf"},
		"session_id": "sess-1",
		"confirmed":  false,
	})
	req := httptest.NewRequest(http.MethodPost, "/internal/extract", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp, "required_steps")
	require.Contains(t, resp, "legal_basis")
}

func TestHandleExtract_RejectsWithoutSessionID(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	body, _ := json.Marshal(map[string]any{"confirmed": true})
	req := httptest.NewRequest(http.MethodPost, "/internal/extract", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleExtract_AcceptsConfirmed(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	body, _ := json.Marshal(map[string]any{
		"files":      []string{"doc.pdf"},
		"session_id": "sess-1",
		"confirmed":  true,
	})
	req := httptest.NewRequest(http.MethodPost, "/internal/extract", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleDestroySession(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodDelete, "/internal/session/sess-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	for _, path := range []string{"/health", "/ready", "/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestStatusEndpoint_RequiresBearerTokenWhenConfigured(t *testing.T) {
	s := newTestServer(t)
	s.managementToken = "secret"
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
