package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPAddress != ":8090" {
		t.Fatalf("HTTPAddress = %q", cfg.HTTPAddress)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Fatalf("SyncInterval = %v", cfg.SyncInterval)
	}
	if cfg.TieBreakLocal {
		t.Fatal("TieBreakLocal should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("TIE_BREAK_LOCAL", "true")

	cfg := Load()
	if cfg.SyncInterval != 30*time.Second {
		t.Fatalf("SyncInterval = %v", cfg.SyncInterval)
	}
	if cfg.SyncWorkers != 8 {
		t.Fatalf("SyncWorkers = %d", cfg.SyncWorkers)
	}
	if !cfg.TieBreakLocal {
		t.Fatal("TieBreakLocal override ignored")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "soon")
	t.Setenv("SYNC_WORKERS", "many")

	cfg := Load()
	if cfg.SyncInterval != 5*time.Minute {
		t.Fatalf("SyncInterval = %v", cfg.SyncInterval)
	}
	if cfg.SyncWorkers != 4 {
		t.Fatalf("SyncWorkers = %d", cfg.SyncWorkers)
	}
}
