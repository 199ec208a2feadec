// Package config loads and holds all engine configuration.
// Settings are layered: defaults → pseudo-config.json → environment variables (env vars win).
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds the full engine configuration.
type Config struct {
	BindAddress    string `json:"bindAddress"`
	Port           int    `json:"port"`
	ManagementPort int    `json:"managementPort"`
	LogLevel       string `json:"logLevel"`
	Debug          bool   `json:"debug"`

	ManagementToken string `json:"managementToken"`

	// Session cache (SC).
	CacheHost     string `json:"cacheHost"`
	CachePort     int    `json:"cachePort"`
	CachePassword string `json:"cachePassword"`
	CacheDB       int    `json:"cacheDB"`

	// Key service (KS).
	KeyServiceBackend string `json:"keyServiceBackend"` // vault | kms | local
	KeyServiceURL     string `json:"keyServiceURL"`
	KeyServiceToken   string `json:"keyServiceToken"`
	KeyServiceKeyName string `json:"keyServiceKeyName"`
	LocalKeyPassword  string `json:"localKeyPassword"` // local backend only: PBKDF2 passphrase

	// NER layer (DP layer 2).
	NERBackend  string `json:"nerBackend"` // heuristic | remote
	NEREndpoint string `json:"nerEndpoint"`

	TTLHours                int `json:"ttlHours"`
	MaxTextLength           int `json:"maxTextLength"`
	MaxPseudonymsPerSession int `json:"maxPseudonymsPerSession"`

	CORSOrigins []string `json:"corsOrigins"`

	// Durable incident/consent ledger.
	AuditDBPath    string `json:"auditDBPath"`
	SweepInterval  string `json:"sweepInterval"` // cron expression
	AuditRetention int    `json:"auditRetention"` // days
}

// Load returns config with defaults overridden by pseudo-config.json and env vars.
func Load() *Config {
	cfg := defaults()
	loadFile(cfg, "pseudo-config.json")
	loadEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		BindAddress:             "127.0.0.1",
		Port:                    8090,
		ManagementPort:          8091,
		LogLevel:                "info",
		CacheHost:               "localhost",
		CachePort:               6379,
		CacheDB:                 0,
		KeyServiceBackend:       "local",
		KeyServiceKeyName:       "pseudo-pas-reverse",
		NERBackend:              "heuristic",
		TTLHours:                1,
		MaxTextLength:           100_000,
		MaxPseudonymsPerSession: 1000,
		CORSOrigins:             []string{},
		AuditDBPath:             "pseudo-audit.db",
		SweepInterval:           "@every 15m",
		AuditRetention:          30,
	}
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path) //nolint:gosec // G703: path is a controlled config file path, not user input
	if err != nil {
		return // file is optional
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("[CONFIG] Warning: could not parse %s: %v", path, err)
	} else {
		log.Printf("[CONFIG] Loaded %s", path)
	}
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("BIND_ADDRESS"); v != "" {
		cfg.BindAddress = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("MANAGEMENT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ManagementPort = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEBUG"); v == "true" {
		cfg.Debug = true
	}
	if v := os.Getenv("MANAGEMENT_TOKEN"); v != "" {
		cfg.ManagementToken = v
	}
	if v := os.Getenv("CACHE_HOST"); v != "" {
		cfg.CacheHost = v
	}
	if v := os.Getenv("CACHE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CachePort = n
		}
	}
	if v := os.Getenv("CACHE_PASSWORD"); v != "" {
		cfg.CachePassword = v
	}
	if v := os.Getenv("CACHE_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheDB = n
		}
	}
	if v := os.Getenv("KEY_SERVICE_BACKEND"); v != "" {
		cfg.KeyServiceBackend = v
	}
	if v := os.Getenv("KEY_SERVICE_URL"); v != "" {
		cfg.KeyServiceURL = v
	}
	if v := os.Getenv("KEY_SERVICE_TOKEN"); v != "" {
		cfg.KeyServiceToken = v
	}
	if v := os.Getenv("KEY_SERVICE_KEY_NAME"); v != "" {
		cfg.KeyServiceKeyName = v
	}
	if v := os.Getenv("LOCAL_KEY_PASSWORD"); v != "" {
		cfg.LocalKeyPassword = v
	}
	if v := os.Getenv("NER_BACKEND"); v != "" {
		cfg.NERBackend = v
	}
	if v := os.Getenv("NER_ENDPOINT"); v != "" {
		cfg.NEREndpoint = v
	}
	if v := os.Getenv("TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 24 {
			cfg.TTLHours = n
		}
	}
	if v := os.Getenv("MAX_TEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTextLength = n
		}
	}
	if v := os.Getenv("MAX_PSEUDONYMS_PER_SESSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPseudonymsPerSession = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("AUDIT_DB_PATH"); v != "" {
		cfg.AuditDBPath = v
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		cfg.SweepInterval = v
	}
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AuditRetention = n
		}
	}
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
