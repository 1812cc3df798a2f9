package main

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/moovolt/csms/central"
)

// serviceConfig is the runtime configuration of the csms binary.
type serviceConfig struct {
	ListenAddr  string
	ControlAddr string
	BasePath    string
	DBPath      string
	LogLevel    string

	HeartbeatInterval time.Duration
	CallTimeout       time.Duration
	IdleTimeout       time.Duration
	PingInterval      time.Duration

	KnownStations []string
	IdTags        []string
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		ListenAddr:        ":8887",
		ControlAddr:       "",
		BasePath:          "/ocpp",
		DBPath:            "db",
		LogLevel:          "info",
		HeartbeatInterval: 60 * time.Second,
		CallTimeout:       30 * time.Second,
		IdleTimeout:       10 * time.Minute,
		PingInterval:      2 * time.Minute,
	}
}

// fileConfig is the config.toml key mapping.
type fileConfig struct {
	ListenAddr            string   `toml:"listen_addr"`
	ControlAddr           string   `toml:"control_addr"`
	BasePath              string   `toml:"base_path"`
	DBPath                string   `toml:"db_path"`
	LogLevel              string   `toml:"log_level"`
	HeartbeatIntervalSecs int      `toml:"heartbeat_interval_seconds"`
	CallTimeoutSecs       int      `toml:"call_timeout_seconds"`
	IdleTimeoutSecs       int      `toml:"idle_timeout_seconds"`
	PingIntervalSecs      int      `toml:"ping_interval_seconds"`
	KnownStations         []string `toml:"known_stations"`
	IdTags                []string `toml:"id_tags"`
}

// loadServiceConfig overlays config.toml onto the defaults.
func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, errors.Wrap(err, "load csms config")
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("control_addr") {
		cfg.ControlAddr = strings.TrimSpace(raw.ControlAddr)
	}
	if meta.IsDefined("base_path") {
		cfg.BasePath = strings.TrimSpace(raw.BasePath)
	}
	if meta.IsDefined("db_path") {
		cfg.DBPath = strings.TrimSpace(raw.DBPath)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("heartbeat_interval_seconds") {
		cfg.HeartbeatInterval = time.Duration(raw.HeartbeatIntervalSecs) * time.Second
	}
	if meta.IsDefined("call_timeout_seconds") {
		cfg.CallTimeout = time.Duration(raw.CallTimeoutSecs) * time.Second
	}
	if meta.IsDefined("idle_timeout_seconds") {
		cfg.IdleTimeout = time.Duration(raw.IdleTimeoutSecs) * time.Second
	}
	if meta.IsDefined("ping_interval_seconds") {
		cfg.PingInterval = time.Duration(raw.PingIntervalSecs) * time.Second
	}
	if meta.IsDefined("known_stations") {
		cfg.KnownStations = raw.KnownStations
	}
	if meta.IsDefined("id_tags") {
		cfg.IdTags = raw.IdTags
	}
	return cfg, nil
}

func (c serviceConfig) serverConfig(startedAt time.Time) central.Config {
	return central.Config{
		BasePath:          c.BasePath,
		HeartbeatInterval: c.HeartbeatInterval,
		CallTimeout:       c.CallTimeout,
		IdleTimeout:       c.IdleTimeout,
		PingInterval:      c.PingInterval,
		StartedAt:         startedAt,
	}
}
