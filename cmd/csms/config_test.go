package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServiceConfigDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	content := `
listen_addr = "127.0.0.1:9000"
base_path = "/charge"
log_level = "debug"
heartbeat_interval_seconds = 120
call_timeout_seconds = 15
known_stations = ["cp001", "cp002"]
id_tags = ["TAG-1"]
	`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadServiceConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.BasePath != "/charge" {
		t.Fatalf("unexpected base path: %q", cfg.BasePath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if cfg.HeartbeatInterval != 120*time.Second {
		t.Fatalf("unexpected heartbeat interval: %v", cfg.HeartbeatInterval)
	}
	if cfg.CallTimeout != 15*time.Second {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
	// Keys absent from the file keep their defaults.
	if cfg.IdleTimeout != 10*time.Minute {
		t.Fatalf("unexpected idle timeout: %v", cfg.IdleTimeout)
	}
	if cfg.DBPath != "db" {
		t.Fatalf("unexpected db path: %q", cfg.DBPath)
	}
	if len(cfg.KnownStations) != 2 || cfg.KnownStations[0] != "cp001" {
		t.Fatalf("unexpected known stations: %v", cfg.KnownStations)
	}
	if len(cfg.IdTags) != 1 || cfg.IdTags[0] != "TAG-1" {
		t.Fatalf("unexpected id tags: %v", cfg.IdTags)
	}
}

func TestLoadServiceConfigMissingFile(t *testing.T) {
	if _, err := loadServiceConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
