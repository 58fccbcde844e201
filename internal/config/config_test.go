package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.ServiceName != "recycle-league-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.ProjectBasePoints != 5 {
		t.Fatalf("unexpected ProjectBasePoints: %d", cfg.ProjectBasePoints)
	}
	if cfg.ScoreMaxRetries != 3 {
		t.Fatalf("unexpected ScoreMaxRetries: %d", cfg.ScoreMaxRetries)
	}
	if cfg.JobMaxWorkers != 8 {
		t.Fatalf("unexpected JobMaxWorkers: %d", cfg.JobMaxWorkers)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache defaults: enabled=%t ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if cfg.WebhookEnabled {
		t.Fatalf("expected webhook disabled by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestLoad_WebhookRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WEBHOOK_ENABLED=true without WEBHOOK_ENDPOINT")
	}
}

func TestLoad_WebhookConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_ENDPOINT", "https://hooks.example.com/recycle")
	t.Setenv("WEBHOOK_TOKEN", "token-123")
	t.Setenv("WEBHOOK_TIMEOUT", "4s")
	t.Setenv("WEBHOOK_RETRIES", "1")
	t.Setenv("WEBHOOK_CIRCUIT_FAILURE_COUNT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WebhookEnabled {
		t.Fatalf("expected WebhookEnabled=true")
	}
	if cfg.WebhookConfig.Endpoint != "https://hooks.example.com/recycle" {
		t.Fatalf("unexpected endpoint: %q", cfg.WebhookConfig.Endpoint)
	}
	if cfg.WebhookConfig.Token != "token-123" {
		t.Fatalf("unexpected token")
	}
	if cfg.WebhookConfig.Timeout != 4*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.WebhookConfig.Timeout)
	}
	if cfg.WebhookConfig.Retries != 1 {
		t.Fatalf("unexpected retries: %d", cfg.WebhookConfig.Retries)
	}
	if cfg.WebhookConfig.CircuitBreaker.FailureThreshold != 7 {
		t.Fatalf("unexpected failure threshold: %d", cfg.WebhookConfig.CircuitBreaker.FailureThreshold)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_ScoringKnobValidation(t *testing.T) {
	t.Run("project base points must be positive", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("PROJECT_BASE_POINTS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for PROJECT_BASE_POINTS=0")
		}
	})

	t.Run("score max retries must be positive", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SCORE_MAX_RETRIES", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCORE_MAX_RETRIES=0")
		}
	})

	t.Run("cache ttl must be positive", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("CACHE_TTL", "-1s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative CACHE_TTL")
		}
	})
}
