package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk sessiond configuration.
type fileConfig struct {
	Environment    string        `yaml:"environment"`
	Secret         string        `yaml:"secret"`
	KeyID          string        `yaml:"key_id"`
	VerifyKeys     []verifyKey   `yaml:"verify_keys"`
	Issuer         string        `yaml:"issuer"`
	Audience       string        `yaml:"audience"`
	Leeway         time.Duration `yaml:"leeway"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	ValidationMode string        `yaml:"validation_mode"`
	Redis          redisConfig   `yaml:"redis"`
	Audit          auditConfig   `yaml:"audit"`
	Metrics        metricsConfig `yaml:"metrics"`
	HTTP           httpConfig    `yaml:"http"`
	Log            logConfig     `yaml:"log"`
}

type verifyKey struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

type redisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type auditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type metricsConfig struct {
	Enabled           bool `yaml:"enabled"`
	LatencyHistograms bool `yaml:"latency_histograms"`
}

type httpConfig struct {
	Addr              string        `yaml:"addr"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultFileConfig() *fileConfig {
	def := goSession.DefaultConfig()
	return &fileConfig{
		Environment:    string(def.Environment),
		SessionTTL:     def.Session.TTL,
		ValidationMode: def.ValidationMode.String(),
		Redis: redisConfig{
			Prefix: def.Revocation.RedisPrefix,
		},
		Audit: auditConfig{
			BufferSize: def.Audit.BufferSize,
			DropIfFull: def.Audit.DropIfFull,
		},
		Metrics: metricsConfig{
			Enabled: def.Metrics.Enabled,
		},
		HTTP: httpConfig{
			Addr:              ":8080",
			ShutdownTimeout:   5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Log: logConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadConfig reads path (optional) over the defaults, then applies
// SESSION_SECRET, APP_ENV and REDIS_ADDR from getenv.
func loadConfig(path string, getenv func(string) string) (*fileConfig, error) {
	cfg := defaultFileConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := getenv("SESSION_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := getenv("APP_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	return cfg, nil
}

// engineConfig converts the file form into a validated engine Config. A
// missing secret is reported here so the process stops at startup.
func (c *fileConfig) engineConfig() (goSession.Config, error) {
	cfg := goSession.DefaultConfig()

	env := strings.ToLower(strings.TrimSpace(c.Environment))
	switch env {
	case "prod":
		env = string(goSession.EnvProduction)
	case "dev", "":
		env = string(goSession.EnvDevelopment)
	}
	cfg.Environment = goSession.Environment(env)

	if c.Secret == "" {
		return cfg, errors.New("session secret missing: set SESSION_SECRET or secret in the config file")
	}
	cfg.JWT.Secret = []byte(c.Secret)
	cfg.JWT.KeyID = c.KeyID
	if len(c.VerifyKeys) > 0 {
		cfg.JWT.VerifyKeys = make(map[string][]byte, len(c.VerifyKeys))
		for _, k := range c.VerifyKeys {
			cfg.JWT.VerifyKeys[k.ID] = []byte(k.Secret)
		}
	}
	cfg.JWT.Issuer = c.Issuer
	cfg.JWT.Audience = c.Audience
	cfg.JWT.Leeway = c.Leeway
	cfg.Session.TTL = c.SessionTTL

	mode, err := goSession.ParseValidationMode(c.ValidationMode)
	if err != nil {
		return cfg, err
	}
	cfg.ValidationMode = mode
	cfg.Revocation.RedisPrefix = c.Redis.Prefix

	cfg.Audit = goSession.AuditConfig{
		Enabled:    c.Audit.Enabled,
		BufferSize: c.Audit.BufferSize,
		DropIfFull: c.Audit.DropIfFull,
	}
	cfg.Metrics = goSession.MetricsConfig{
		Enabled:                 c.Metrics.Enabled,
		EnableLatencyHistograms: c.Metrics.LatencyHistograms,
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.ValidationMode == goSession.ModeStrict && c.Redis.Addr == "" {
		return cfg, errors.New("validation_mode strict requires redis.addr or REDIS_ADDR")
	}
	return cfg, nil
}
