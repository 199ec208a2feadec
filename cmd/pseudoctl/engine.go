package main

import (
	"time"

	"github.com/Zerausir/pseudo-pas/internal/audit"
	"github.com/Zerausir/pseudo-pas/internal/config"
	"github.com/Zerausir/pseudo-pas/internal/detect"
	"github.com/Zerausir/pseudo-pas/internal/keyservice"
	"github.com/Zerausir/pseudo-pas/internal/logger"
	"github.com/Zerausir/pseudo-pas/internal/pseudonymize"
	"github.com/Zerausir/pseudo-pas/internal/sessioncache"
)

// buildEngine wires an Engine from the same layered configuration the
// HTTP service uses, so pseudoctl always exercises the live cache and
// key service rather than a stand-in.
func buildEngine() (*pseudonymize.Engine, func(), error) {
	cfg := config.Load()
	log0 := logger.New("PSEUDOCTL", cfg.LogLevel)

	keys, err := keyservice.New(cfg.KeyServiceBackend, keyservice.Config{
		URL:                cfg.KeyServiceURL,
		AuthToken:          cfg.KeyServiceToken,
		KeyName:            cfg.KeyServiceKeyName,
		KMSKeyResourceName: cfg.KeyServiceKeyName,
		LocalPassword:      cfg.LocalKeyPassword,
	})
	if err != nil {
		return nil, nil, err
	}

	cache := sessioncache.New(sessioncache.Options{
		Host:     cfg.CacheHost,
		Port:     cfg.CachePort,
		Password: cfg.CachePassword,
		DB:       cfg.CacheDB,
	})

	var ledger *audit.Ledger
	if l, err := audit.Open(cfg.AuditDBPath); err == nil {
		ledger = l
	} else {
		log0.Warnf("startup", "audit ledger unavailable, continuing without it: %v", err)
	}

	layer2 := detect.Detector(detect.NewLayer2())
	if cfg.NERBackend == "remote" {
		layer2 = detect.NewRemoteLayer2(cfg.NEREndpoint)
	}

	engine := pseudonymize.New(pseudonymize.Options{
		Detectors: []detect.Detector{
			detect.NewLayer1(),
			detect.NewLayer1_5(),
			layer2,
			detect.NewLayer3(),
		},
		Cache:                   cache,
		Keys:                    keys,
		Audit:                   ledger,
		Logger:                  log0,
		TTL:                     time.Duration(cfg.TTLHours) * time.Hour,
		MaxTextLength:           cfg.MaxTextLength,
		MaxPseudonymsPerSession: cfg.MaxPseudonymsPerSession,
	})

	cleanup := func() {
		_ = cache.Close()
		_ = keys.Close()
		if ledger != nil {
			_ = ledger.Close()
		}
	}
	return engine, cleanup, nil
}
