// Package pseudonymize implements the Pseudonymisation Engine (PE):
// it drives the detection pipeline, mints or reuses reversible
// tokens, and performs the substitution that produces the tokenised
// text an operator previews and an LLM call ultimately receives.
//
// The engine owns no detection logic of its own — it orchestrates a
// list of detect.Detector implementations in fixed order — and no
// cryptography of its own — every encrypt/decrypt call goes through a
// keyservice.Provider. Its own job is narrow: dedup, mint, bind,
// substitute, and keep the whole sequence atomic per value.
package pseudonymize

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zerausir/pseudo-pas/internal/audit"
	"github.com/Zerausir/pseudo-pas/internal/detect"
	"github.com/Zerausir/pseudo-pas/internal/keyservice"
	"github.com/Zerausir/pseudo-pas/internal/logger"
	"github.com/Zerausir/pseudo-pas/internal/metrics"
	"github.com/Zerausir/pseudo-pas/internal/sessioncache"
)

// tokenPattern matches a token wherever it appears in a document,
// per the wire format `\b[A-Z]+_[0-9A-F]{8}\b`.
var tokenPattern = regexp.MustCompile(`\b[A-Z]+_[0-9A-F]{8}\b`)

// Engine ties the detection pipeline to the session cache and key
// service. The zero value is not usable; construct with New.
type Engine struct {
	detectors []detect.Detector
	cache     sessioncache.Cache
	keys      keyservice.Provider
	audit     *audit.Ledger // optional; nil disables incident logging
	metrics   *metrics.Metrics
	log       *logger.Logger

	ttl                     time.Duration
	maxTextLength           int
	maxPseudonymsPerSession int
}

// Options configures a new Engine.
type Options struct {
	Detectors               []detect.Detector
	Cache                   sessioncache.Cache
	Keys                    keyservice.Provider
	Audit                   *audit.Ledger
	Metrics                 *metrics.Metrics
	Logger                  *logger.Logger
	TTL                     time.Duration
	MaxTextLength           int
	MaxPseudonymsPerSession int
}

// New constructs an Engine. If opts.Detectors is empty the default
// four-layer pipeline (Layer 1, 1.5, 2, 3 in that fixed order) is used.
func New(opts Options) *Engine {
	detectors := opts.Detectors
	if len(detectors) == 0 {
		detectors = []detect.Detector{
			detect.NewLayer1(),
			detect.NewLayer1_5(),
			detect.NewLayer2(),
			detect.NewLayer3(),
		}
	}
	return &Engine{
		detectors:               detectors,
		cache:                   opts.Cache,
		keys:                    opts.Keys,
		audit:                   opts.Audit,
		metrics:                 opts.Metrics,
		log:                     opts.Logger,
		ttl:                     opts.TTL,
		maxTextLength:           opts.MaxTextLength,
		maxPseudonymsPerSession: opts.MaxPseudonymsPerSession,
	}
}

// Result is the return value of a Pseudonymize call.
type Result struct {
	TokenisedText string
	SessionID     string
	Mapping       map[string]string // token -> real value, preview-only
	Stats         Stats
}

// Pseudonymize runs the four-layer detection pipeline over text in
// fixed order, binding each accepted value to a token (minting a new
// one or reusing whichever token already owns that value in this
// session) and substituting every occurrence before the next layer
// runs. Calling twice with the same session_id and text is idempotent:
// every value is already bound on the second call, so no new tokens
// are minted and the output is byte-for-byte identical.
func (e *Engine) Pseudonymize(ctx context.Context, text, sessionID string) (Result, error) {
	start := time.Now()
	if e.metrics != nil {
		defer func() { e.metrics.RecordPseudonymizeLatency(time.Since(start)) }()
	}

	if e.maxTextLength > 0 && len(text) > e.maxTextLength {
		return Result{}, ErrInputTooLarge
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Every layer detects against the same normalised original text;
	// only the substitution target (working) accumulates tokens. A
	// layer scanning already-substituted text would see token
	// fragments (a signature label followed by NOMBRE_AB12CD34 reads
	// as a name called "NOMBRE") and bind them. Cross-layer dedup is
	// carried by the forward cache, not by consuming the text.
	original := detect.NormalizeDigitRuns(text)
	working := original
	mapping := make(map[string]string)
	detections := make(map[string]int)
	totalSubstitutions := 0
	degraded := false
	pending := &pendingBindings{}
	groups := make(map[string]*variantGroup)

	for _, d := range e.detectors {
		if dd, ok := d.(detect.DegradableDetector); ok && !dd.Available() {
			degraded = true
			if e.log != nil {
				e.log.Warnf("detect", "layer %s unavailable, skipping (degraded)", d.Name())
			}
			continue
		}
		for _, span := range d.Detect(original) {
			value := strings.TrimSpace(span.Value)
			if value == "" || detect.IsException(value) {
				continue
			}

			variants := []string{value}
			if span.Expand {
				variants = detect.ExpandVariants(value)
			}
			if len(variants) == 0 {
				continue
			}

			token, minted, err := e.bindOrMint(ctx, sessionID, span.Type, value, variants, pending)
			if err != nil {
				e.rollbackBindings(ctx, pending)
				return Result{}, err
			}
			if minted {
				detections[d.Name()]++
				if e.metrics != nil {
					e.metrics.TokensMintedTotal.WithLabelValues(string(span.Type)).Inc()
					e.metrics.DetectionsTotal.WithLabelValues(d.Name()).Inc()
				}
			}
			if _, exists := mapping[token]; !exists {
				mapping[token] = value
			}

			// Substitute the literal span a detector matched. A later
			// layer independently detecting the same name's full run
			// elsewhere still substitutes it as one contiguous match
			// here; the document-wide variant sweep below only mops up
			// what no layer ever proposed as a span of its own.
			substituted, count := substituteValue(working, value, token, span.Type.NameClass())
			working = substituted
			totalSubstitutions += count

			g, ok := groups[token]
			if !ok {
				g = &variantGroup{nameClass: span.Type.NameClass()}
				groups[token] = g
			}
			g.variants = append(g.variants, variants...)
		}
	}

	// Final sweep: for every bound token, replace any remaining
	// occurrence of any variant the call ever generated for it,
	// longest-first. By now every layer has already substituted
	// whichever full run it independently detected, so this only
	// catches a bound name's variant recurring where no layer proposed
	// it as its own span — a bare surname in running prose, never its
	// own 2-5 word Title-Case candidate and nowhere near a header or
	// signature window — which would otherwise leak into the output.
	tokens := make([]string, 0, len(groups))
	for token := range groups {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		g := groups[token]
		swept, count := substituteVariants(working, g.variants, token, g.nameClass)
		working = swept
		totalSubstitutions += count
	}

	return Result{
		TokenisedText: working,
		SessionID:     sessionID,
		Mapping:       mapping,
		Stats: Stats{
			DetectionsByLayer:  detections,
			TotalSubstitutions: totalSubstitutions,
			TotalUnique:        len(mapping),
			Degraded:           degraded,
		},
	}, nil
}

// Depseudonymize scans text for tokens matching the wire token
// pattern and resolves each one through the session's reverse
// binding. A token whose binding cannot be found or decrypted is left
// verbatim and reported in Stats.Missing rather than aborting the
// whole call — a partial recovery is always better than none.
func (e *Engine) Depseudonymize(ctx context.Context, text, sessionID string) (string, Stats, error) {
	start := time.Now()
	if e.metrics != nil {
		defer func() { e.metrics.RecordDepseudonymizeLatency(time.Since(start)) }()
	}

	result := text
	var missing []string
	seen := make(map[string]bool)

	for _, token := range tokenPattern.FindAllString(text, -1) {
		if seen[token] {
			continue
		}
		seen[token] = true

		real, ok, err := e.resolveToken(ctx, sessionID, token)
		if err != nil || !ok {
			missing = append(missing, token)
			detail := "binding not found"
			if err != nil {
				detail = err.Error()
			}
			if e.log != nil {
				e.log.WithSession(sessionID).Errorf("reverse_failed", "token %s: %s", token, detail)
			}
			if e.audit != nil {
				_ = e.audit.Record(audit.Event{
					SessionID: sessionID,
					Kind:      audit.ReverseFailed,
					Detail:    fmt.Sprintf("%s: %s", token, detail),
					Timestamp: time.Now(),
				})
			}
			continue
		}
		result = strings.ReplaceAll(result, token, real)
		if e.metrics != nil {
			e.metrics.TokensReversedTotal.Inc()
		}
	}

	return result, Stats{Missing: missing}, nil
}

func (e *Engine) resolveToken(ctx context.Context, sessionID, token string) (string, bool, error) {
	reverseKey := sessioncache.ReverseKey(sessionID, token)
	ciphertext, ok, err := e.cache.Get(ctx, reverseKey)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	plaintext, err := e.keys.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", false, err
	}
	return string(plaintext), true, nil
}

// Destroy atomically removes every binding under sessionID. Future
// depseudonymize calls against this session leave tokens unresolved.
func (e *Engine) Destroy(ctx context.Context, sessionID string) error {
	return e.cache.DeletePattern(ctx, sessioncache.SessionPrefix(sessionID))
}

// pendingBindings accumulates every binding key written over the
// course of one Pseudonymize call, across every span and every layer,
// plus however much the session's mint-quota counter was incremented
// during the call. Bindings are written one at a time in a canonical
// order and this is the undo list: a failure anywhere in the call
// aborts the whole call and
// its tokenised output is discarded, so every binding written earlier
// in that same call — not just the one write that failed — must be
// rolled back; otherwise an aborted document leaves orphaned
// bindings behind that still count against MAX_PSEUDONYMS_PER_SESSION
// for the rest of the TTL.
type pendingBindings struct {
	keys           []string
	quotaKey       string
	quotaIncrement int
}

// variantGroup accumulates every variant ever generated for a bound
// token over the course of one Pseudonymize call, across every span
// and every layer that matched or reused it, for the final document
// sweep to consume.
type variantGroup struct {
	nameClass bool
	variants  []string
}

func (p *pendingBindings) track(key string) {
	p.keys = append(p.keys, key)
}

// rollbackBindings undoes every binding recorded in pending: it is
// called once, at the Pseudonymize call level, when any span in the
// call fails to bind. Best-effort — a cache already unreachable is
// why the call is aborting in the first place.
func (e *Engine) rollbackBindings(ctx context.Context, pending *pendingBindings) {
	for _, k := range pending.keys {
		_ = e.cache.Delete(ctx, k)
	}
	if pending.quotaIncrement <= 0 || pending.quotaKey == "" {
		return
	}
	v, ok, err := e.cache.Get(ctx, pending.quotaKey)
	if err != nil || !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	remaining := n - pending.quotaIncrement
	if remaining < 0 {
		remaining = 0
	}
	_ = e.cache.Set(ctx, pending.quotaKey, strconv.Itoa(remaining), e.ttl)
}

// bindOrMint looks up every variant's forward key, in order, and
// returns the first existing binding it finds — this is what lets an
// independently detected mention elsewhere in the document (a
// different layer, a different wording) resolve to the same token
// as long as one of its variants matches one already bound. If none
// exists, it mints a new token for the canonical value (subject to
// the session's pseudonym quota) and writes a forward entry for every
// variant so a later mention sharing any one of them reuses it. Every
// key it writes is also recorded in pending so the whole call can be
// undone if a later span fails.
func (e *Engine) bindOrMint(ctx context.Context, sessionID string, t detect.EntityType, value string, variants []string, pending *pendingBindings) (token string, minted bool, err error) {
	for _, v := range variants {
		key := forwardKey(sessionID, t, v)
		if tok, ok, gerr := e.cache.Get(ctx, key); gerr != nil {
			return "", false, fmt.Errorf("%w: %v", ErrBindingFailed, gerr)
		} else if ok {
			return tok, false, nil
		}
	}

	if err := e.checkQuota(ctx, sessionID, pending); err != nil {
		return "", false, err
	}

	token, reverseKey, err := e.mint(ctx, sessionID, t, value)
	if err != nil {
		return "", false, err
	}
	pending.track(reverseKey)

	for _, v := range variants {
		key := forwardKey(sessionID, t, v)
		if err := e.cache.Set(ctx, key, token, e.ttl); err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrBindingFailed, err)
		}
		pending.track(key)
	}

	return token, true, nil
}

// forwardKey builds the canonical forward key, lower-casing the real
// value for name-class types so the binding is matched and reused
// case-insensitively.
func forwardKey(sessionID string, t detect.EntityType, real string) string {
	if t.NameClass() {
		real = strings.ToLower(real)
	}
	return sessioncache.ForwardKey(sessionID, string(t), real)
}

// checkQuota enforces MAX_PSEUDONYMS_PER_SESSION. It both checks and
// increments the session's mint counter so the check holds across
// repeated calls against the same session. The increment is recorded
// on pending so rollbackBindings can undo it if the call that
// triggered it later fails and aborts.
func (e *Engine) checkQuota(ctx context.Context, sessionID string, pending *pendingBindings) error {
	if e.maxPseudonymsPerSession <= 0 {
		return nil
	}
	key := sessionID + ":mintcount"
	current := 0
	if v, ok, err := e.cache.Get(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrBindingFailed, err)
	} else if ok {
		if n, perr := strconv.Atoi(v); perr == nil {
			current = n
		}
	}
	if current >= e.maxPseudonymsPerSession {
		return ErrSessionQuotaExceeded
	}
	if err := e.cache.Set(ctx, key, strconv.Itoa(current+1), e.ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrBindingFailed, err)
	}
	pending.quotaKey = key
	pending.quotaIncrement++
	return nil
}

// mint draws a token, encrypts real via the key service, and writes
// the reverse binding — in that order, so a real value is never
// "seen" (forward-bound) without a way to reverse it. On a reverse-
// key collision within the same session the token is redrawn. The
// caller records the returned reverseKey on its pending-bindings list.
func (e *Engine) mint(ctx context.Context, sessionID string, t detect.EntityType, real string) (string, string, error) {
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		token, err := randomToken(t)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrBindingFailed, err)
		}

		reverseKey := sessioncache.ReverseKey(sessionID, token)
		if _, exists, gerr := e.cache.Get(ctx, reverseKey); gerr != nil {
			return "", "", fmt.Errorf("%w: %v", ErrBindingFailed, gerr)
		} else if exists {
			continue
		}

		ciphertext, err := e.keys.Encrypt(ctx, []byte(real))
		if err != nil {
			// One retry for a transient key-service failure; a second
			// failure aborts the call with no partial bindings.
			ciphertext, err = e.keys.Encrypt(ctx, []byte(real))
		}
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
		}

		if err := e.cache.Set(ctx, reverseKey, ciphertext, e.ttl); err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrBindingFailed, err)
		}
		return token, reverseKey, nil
	}
	return "", "", ErrBindingFailed
}

// randomToken draws <TYPE>_<8 hex> from a cryptographic random source.
func randomToken(t detect.EntityType) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", t, strings.ToUpper(hex.EncodeToString(buf))), nil
}
