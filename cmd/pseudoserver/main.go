// Command pseudoserver runs the pseudonymization engine as an HTTP
// service: the internal /internal/pseudonymize, /internal/depseudonymize,
// and /internal/session/{id} endpoints, the operational health probes,
// and a bearer-token-gated management sub-mux (/status, /metrics).
//
// Usage:
//
//	./pseudoserver
//
//	# Custom port (the management routes are served on it too)
//	PORT=9090 ./pseudoserver
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Zerausir/pseudo-pas/internal/audit"
	"github.com/Zerausir/pseudo-pas/internal/config"
	"github.com/Zerausir/pseudo-pas/internal/consent"
	"github.com/Zerausir/pseudo-pas/internal/detect"
	"github.com/Zerausir/pseudo-pas/internal/httpapi"
	"github.com/Zerausir/pseudo-pas/internal/keyservice"
	"github.com/Zerausir/pseudo-pas/internal/logger"
	"github.com/Zerausir/pseudo-pas/internal/metrics"
	"github.com/Zerausir/pseudo-pas/internal/pseudonymize"
	"github.com/Zerausir/pseudo-pas/internal/sessioncache"
)

func main() {
	cfg := config.Load()
	log0 := logger.New("ENGINE", cfg.LogLevel)

	printBanner(cfg)

	keys, err := keyservice.New(cfg.KeyServiceBackend, keyservice.Config{
		URL:                cfg.KeyServiceURL,
		AuthToken:          cfg.KeyServiceToken,
		KeyName:            cfg.KeyServiceKeyName,
		KMSKeyResourceName: cfg.KeyServiceKeyName,
		LocalPassword:      cfg.LocalKeyPassword,
	})
	if err != nil {
		log0.Fatalf("startup", "key service: %v", err)
	}
	defer func() {
		if err := keys.Close(); err != nil {
			log0.Errorf("shutdown", "key service close: %v", err)
		}
	}()

	cache := sessioncache.New(sessioncache.Options{
		Host:     cfg.CacheHost,
		Port:     cfg.CachePort,
		Password: cfg.CachePassword,
		DB:       cfg.CacheDB,
	})
	defer func() {
		if err := cache.Close(); err != nil {
			log0.Errorf("shutdown", "session cache close: %v", err)
		}
	}()

	ledger, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		log0.Fatalf("startup", "audit ledger: %v", err)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			log0.Errorf("shutdown", "audit ledger close: %v", err)
		}
	}()

	m := metrics.New()

	engine := pseudonymize.New(pseudonymize.Options{
		Detectors:               detectorsFor(cfg),
		Cache:                   cache,
		Keys:                    keys,
		Audit:                   ledger,
		Metrics:                 m,
		Logger:                  log0,
		TTL:                     time.Duration(cfg.TTLHours) * time.Hour,
		MaxTextLength:           cfg.MaxTextLength,
		MaxPseudonymsPerSession: cfg.MaxPseudonymsPerSession,
	})

	gate := consent.New()

	server := httpapi.New(httpapi.Options{
		Engine:          engine,
		Gate:            gate,
		Audit:           ledger,
		Metrics:         m,
		Logger:          log0,
		ManagementToken: cfg.ManagementToken,
	})

	sweeper := startAuditSweep(cfg, ledger, log0)
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log0.Info("shutdown", "Shutting down…")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log0.Errorf("shutdown", "shutdown error: %v", err)
		}
	}()

	log0.Infof("startup", "Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log0.Fatalf("startup", "fatal: %v", err)
	}
}

// startAuditSweep schedules the periodic audit-ledger retention prune
// on cfg.SweepInterval (a standard cron expression, e.g. "@every 15m").
func startAuditSweep(cfg *config.Config, ledger *audit.Ledger, log0 *logger.Logger) *cron.Cron {
	c := cron.New()
	retention := time.Duration(cfg.AuditRetention) * 24 * time.Hour
	_, err := c.AddFunc(cfg.SweepInterval, func() {
		cutoff := time.Now().Add(-retention)
		removed, err := ledger.PruneOlderThan(cutoff)
		if err != nil {
			log0.Errorf("audit_sweep", "prune failed: %v", err)
			return
		}
		if removed > 0 {
			log0.Infof("audit_sweep", "pruned %d incident records older than %s", removed, cutoff.Format(time.RFC3339))
		}
	})
	if err != nil {
		log0.Fatalf("startup", "invalid sweep interval %q: %v", cfg.SweepInterval, err)
	}
	c.Start()
	return c
}

// detectorsFor builds the fixed-order detector pipeline, substituting
// the remote NER stub for Layer 2 when NER_BACKEND=remote is
// configured. The remote backend reports itself permanently
// unavailable (see detect.RemoteLayer2), so the engine degrades
// gracefully rather than silently skipping redaction.
func detectorsFor(cfg *config.Config) []detect.Detector {
	layer2 := detect.Detector(detect.NewLayer2())
	if cfg.NERBackend == "remote" {
		layer2 = detect.NewRemoteLayer2(cfg.NEREndpoint)
	}
	return []detect.Detector{
		detect.NewLayer1(),
		detect.NewLayer1_5(),
		layer2,
		detect.NewLayer3(),
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf(`
╔══════════════════════════════════════════════════════╗
║     Pseudonymization Engine  (Go)                     ║
╚══════════════════════════════════════════════════════╝
  Port                : %d
  Key service         : %s
  Session cache       : %s:%d (db %d)
  NER backend         : %s
  Session TTL         : %dh
  Max text length     : %d bytes
  Max pseudonyms/sess : %d

  Check health:
    curl http://localhost:%d/health
`, cfg.Port, cfg.KeyServiceBackend, cfg.CacheHost, cfg.CachePort, cfg.CacheDB,
		cfg.NERBackend, cfg.TTLHours, cfg.MaxTextLength, cfg.MaxPseudonymsPerSession,
		cfg.Port)
}
