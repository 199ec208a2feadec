package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Zerausir/pseudo-pas/internal/audit"
	"github.com/Zerausir/pseudo-pas/internal/consent"
	"github.com/Zerausir/pseudo-pas/internal/pseudonymize"
)

// maxBodyBytes bounds request bodies independent of MAX_TEXT_LENGTH:
// it exists purely to stop an oversized request from being buffered
// into memory at all, before the engine's own cap is even consulted.
const maxBodyBytes = 2 << 20 // 2 MiB

type pseudonymizeRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

type pseudonymizeResponse struct {
	PseudonymizedText string             `json:"pseudonymized_text"`
	SessionID         string             `json:"session_id"`
	Mapping           map[string]string  `json:"mapping"`
	PseudonymsCount   int                `json:"pseudonyms_count"`
	Stats             pseudonymize.Stats `json:"stats"`
}

// handlePseudonymize implements POST /internal/pseudonymize. The
// returned mapping is for preview rendering only; callers must not
// persist it beyond the HTTP response.
func (s *Server) handlePseudonymize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req pseudonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body: need {\"text\":\"...\",\"session_id\":\"...\"}"))
		return
	}

	result, err := s.engine.Pseudonymize(r.Context(), req.Text, req.SessionID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pseudonymizeResponse{
		PseudonymizedText: result.TokenisedText,
		SessionID:         result.SessionID,
		Mapping:           result.Mapping,
		PseudonymsCount:   result.Stats.TotalUnique,
		Stats:             result.Stats,
	})
}

type depseudonymizeRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

type depseudonymizeResponse struct {
	OriginalText string             `json:"original_text"`
	Stats        pseudonymize.Stats `json:"stats"`
}

// handleDepseudonymize implements POST /internal/depseudonymize.
func (s *Server) handleDepseudonymize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req depseudonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body: need {\"text\":\"...\",\"session_id\":\"...\"}"))
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, errors.New("session_id is required"))
		return
	}

	original, stats, err := s.engine.Depseudonymize(r.Context(), req.Text, req.SessionID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, depseudonymizeResponse{OriginalText: original, Stats: stats})
}

// handleDestroySession implements DELETE /internal/session/{id}.
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("session id is required"))
		return
	}
	if err := s.engine.Destroy(r.Context(), id); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"destroyed": id})
}

type extractRequest struct {
	Files     []string `json:"files"`
	SessionID string   `json:"session_id"`
	Confirmed bool     `json:"confirmed"`
}

// handleExtract implements the upstream extraction contract: the
// Consent Gate rejects with HTTP 403 unless confirmed is true and
// session_id is present. Nothing past that gate lives here; a real
// deployment hands the tokenised text to its LLM client next.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if err := s.gate.RequireConfirmation(req.SessionID, req.Confirmed); err != nil {
		if s.metrics != nil {
			s.metrics.ConsentRejectionsTotal.Inc()
		}
		if s.audit != nil {
			_ = s.audit.Record(audit.Event{
				SessionID: req.SessionID,
				Kind:      audit.ConsentRejected,
				Detail:    err.Error(),
				Timestamp: time.Now(),
			})
		}
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":          err.Error(),
			"required_steps": consent.RequiredSteps,
			"legal_basis":    consent.LegalBasis,
		})
		return
	}

	if s.audit != nil {
		_ = s.audit.Record(audit.Event{
			SessionID: req.SessionID,
			Kind:      audit.ConsentConfirmed,
			Detail:    "extraction request accepted",
			Timestamp: time.Now(),
		})
	}

	// The LLM call and business-schema validation belong to the
	// orchestrator; this endpoint only asserts the consent gate passed.
	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id": req.SessionID,
		"status":     "confirmed",
		"files":      req.Files,
	})
}

// writeEngineError maps a pseudonymize error to its HTTP status and
// body.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pseudonymize.ErrInputTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, pseudonymize.ErrSessionQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, err)
	case errors.Is(err, pseudonymize.ErrKeyUnavailable):
		if s.metrics != nil {
			s.metrics.BindingFailuresTotal.Inc()
		}
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, pseudonymize.ErrBindingFailed):
		if s.metrics != nil {
			s.metrics.BindingFailuresTotal.Inc()
		}
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
