// Package httpapi exposes the engine's HTTP contract: the three
// internal pseudonymization endpoints, the operational health
// probes, a bearer-token-gated management sub-mux (status/metrics),
// and the consent-gated extraction endpoint that demonstrates the
// workflow contract callers must follow before any outbound LLM call.
//
// The actual LLM client, prompt engineering, and business-schema
// validation live in the orchestrator, not here: /internal/extract
// only enforces the Consent Gate and reports what would happen next.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zerausir/pseudo-pas/internal/audit"
	"github.com/Zerausir/pseudo-pas/internal/consent"
	"github.com/Zerausir/pseudo-pas/internal/logger"
	"github.com/Zerausir/pseudo-pas/internal/metrics"
	"github.com/Zerausir/pseudo-pas/internal/pseudonymize"
)

// Server wires the pseudonymization engine and consent gate to HTTP.
type Server struct {
	engine    *pseudonymize.Engine
	gate      *consent.Gate
	audit     *audit.Ledger // optional; nil disables incident logging
	metrics   *metrics.Metrics
	log       *logger.Logger
	startTime time.Time

	managementToken string // bearer token for /status, /metrics; empty = no auth
}

// Options configures a new Server.
type Options struct {
	Engine          *pseudonymize.Engine
	Gate            *consent.Gate
	Audit           *audit.Ledger
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
	ManagementToken string
}

// New constructs a Server.
func New(opts Options) *Server {
	return &Server{
		engine:          opts.Engine,
		gate:            opts.Gate,
		audit:           opts.Audit,
		metrics:         opts.Metrics,
		log:             opts.Logger,
		startTime:       time.Now(),
		managementToken: opts.ManagementToken,
	}
}

// Handler returns the complete HTTP handler for the engine.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /internal/pseudonymize", s.handlePseudonymize)
	mux.HandleFunc("POST /internal/depseudonymize", s.handleDepseudonymize)
	mux.HandleFunc("DELETE /internal/session/{id}", s.handleDestroySession)
	mux.HandleFunc("POST /internal/extract", s.handleExtract)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /live", s.handleLive)

	mux.Handle("GET /status", s.authMiddleware(http.HandlerFunc(s.handleStatus)))
	if s.metrics != nil {
		handler := promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
		mux.Handle("GET /metrics", s.authMiddleware(handler))
	}

	return s.withRequestMetrics(mux)
}

// withRequestMetrics wraps every route with a total-requests counter
// keyed by route pattern and status class.
func (s *Server) withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		// The mux records the matched pattern on r; unmatched requests
		// fall back to the raw path.
		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.RequestsTotal.WithLabelValues(route, statusClass(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

// authMiddleware checks for a valid Bearer token if one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.managementToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(auth[len(prefix):])), []byte(s.managementToken)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
