package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "REDIS_ADDR", "REDIS_DB", "SUMMARY_CACHE_TTL",
		"JWT_ACCESS_TTL", "REACTION_CACHE_CAPACITY", "REACTION_FETCH_TIMEOUT", "REACTION_OPTIMISTIC",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.TTL != 30*time.Second {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	want := CacheConfig{Capacity: 500, FetchTimeout: 10 * time.Second}
	if diff := cmp.Diff(want, cfg.Cache); diff != "" {
		t.Fatalf("cache config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REACTION_CACHE_CAPACITY", "50")
	t.Setenv("REACTION_FETCH_TIMEOUT", "3")
	t.Setenv("JWT_ACCESS_TTL", "1h")
	t.Setenv("REACTION_OPTIMISTIC", "true")

	cfg := Load()
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins); diff != "" {
		t.Fatalf("origins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Redis.DB != 2 || cfg.Cache.Capacity != 50 || !cfg.Cache.Optimistic {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Cache.FetchTimeout != 3*time.Second || cfg.Auth.AccessTTL != time.Hour {
		t.Fatalf("unexpected durations: fetch=%s access=%s", cfg.Cache.FetchTimeout, cfg.Auth.AccessTTL)
	}
}

func TestGetenvDurationInvalid(t *testing.T) {
	t.Setenv("X_TIMEOUT", "soon")
	if got := getenvDuration("X_TIMEOUT", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
}
