package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis.Enabled = true, want false by default")
	}

	rc := cfg.Recommendation
	if rc.DefaultLimit != 6 || rc.FallbackPerItem != 3 || rc.IndexTopK != 10 {
		t.Errorf("Recommendation = %+v, want limit 6, fallback 3, top k 10", rc)
	}
	if rc.BehaviorMaxEvents != 0 || rc.BehaviorRetention != 0 {
		t.Errorf("behavior log bounded by default: %+v", rc)
	}
	if rc.IndexRefreshInterval != 15*time.Minute {
		t.Errorf("IndexRefreshInterval = %v, want 15m", rc.IndexRefreshInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RECO_DEFAULT_LIMIT", "12")
	t.Setenv("RECO_BEHAVIOR_MAX_EVENTS", "5000")
	t.Setenv("RECO_BEHAVIOR_RETENTION", "72h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Redis.Enabled {
		t.Error("Redis.Enabled = false, want true")
	}
	if cfg.Recommendation.DefaultLimit != 12 {
		t.Errorf("DefaultLimit = %d, want 12", cfg.Recommendation.DefaultLimit)
	}
	if cfg.Recommendation.BehaviorMaxEvents != 5000 {
		t.Errorf("BehaviorMaxEvents = %d, want 5000", cfg.Recommendation.BehaviorMaxEvents)
	}
	if cfg.Recommendation.BehaviorRetention != 72*time.Hour {
		t.Errorf("BehaviorRetention = %v, want 72h", cfg.Recommendation.BehaviorRetention)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing jwt secret",
			env:  map[string]string{"JWT_SECRET": "", "DB_PASSWORD": "pass"},
		},
		{
			name: "missing database password",
			env:  map[string]string{"JWT_SECRET": "secret", "DB_PASSWORD": ""},
		},
		{
			name: "bad integer",
			env:  map[string]string{"JWT_SECRET": "secret", "DB_PASSWORD": "pass", "RECO_INDEX_TOP_K": "ten"},
		},
		{
			name: "bad duration",
			env:  map[string]string{"JWT_SECRET": "secret", "DB_PASSWORD": "pass", "RECO_MIRROR_TTL": "forever"},
		},
		{
			name: "bad bool",
			env:  map[string]string{"JWT_SECRET": "secret", "DB_PASSWORD": "pass", "REDIS_ENABLED": "maybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
