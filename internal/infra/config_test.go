package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GuestLimit != 15 {
		t.Fatalf("GuestLimit = %d, want 15", cfg.GuestLimit)
	}
	if cfg.BatchWorkers != 5 {
		t.Fatalf("BatchWorkers = %d, want 5", cfg.BatchWorkers)
	}
	if cfg.VideoPollInterval != 5*time.Second || cfg.VideoPollMax != 120 {
		t.Fatalf("video poll defaults mismatch: %v / %d", cfg.VideoPollInterval, cfg.VideoPollMax)
	}
	if cfg.CacheTTL != time.Hour {
		t.Fatalf("CacheTTL = %v, want 1h", cfg.CacheTTL)
	}
}

func TestLoadConfigRequiredVars(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{name: "database url", unset: "DATABASE_URL"},
		{name: "jwt secret", unset: "JWT_SECRET"},
		{name: "gemini api key", unset: "GEMINI_API_KEY"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://example")
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv("GEMINI_API_KEY", "test-key")
			t.Setenv(tc.unset, "")

			if _, err := LoadConfig(); err == nil {
				t.Fatalf("LoadConfig succeeded without %s", tc.unset)
			}
		})
	}
}
