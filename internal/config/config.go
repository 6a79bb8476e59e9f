package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
)

// CurrentSchemaVersion is the current config schema version.
const CurrentSchemaVersion = 1

// Environment variable names for config overrides.
// Priority: Environment > Config File > Default
const (
	EnvPort         = "SEEDTRACKER_PORT"
	EnvRosterURL    = "SEEDTRACKER_ROSTER_URL"
	EnvIntervalMin  = "SEEDTRACKER_INTERVAL_MIN"
	EnvSeedStart    = "SEEDTRACKER_SEED_START"
	EnvSeedEnd      = "SEEDTRACKER_SEED_END"
	EnvLookbackDays = "SEEDTRACKER_LOOKBACK_DAYS"
	EnvPurgeDays    = "SEEDTRACKER_PURGE_DAYS"
	EnvListMode     = "SEEDTRACKER_LIST_MODE"
)

// List modes for seeding eligibility.
const (
	ListModeBlacklist = "blacklist"
	ListModeWhitelist = "whitelist"
)

// Config holds non-sensitive application configuration.
type Config struct {
	SchemaVersion    int      `json:"schema_version"`
	Port             int      `json:"port"`
	RosterURL        string   `json:"roster_url"`
	IntervalMinutes  int      `json:"interval_minutes"`
	SeedStart        int      `json:"seed_start"`
	SeedEnd          int      `json:"seed_end"`
	ListMode         string   `json:"list_mode"`
	PlayerList       []string `json:"player_list"`
	MaxListSize      int      `json:"max_list_size"`
	LookbackDays     int      `json:"lookback_days"`
	PurgeDays        int      `json:"purge_days"`
	LeaderboardSize  int      `json:"leaderboard_size"`
	AlertsEnabled    bool     `json:"alerts_enabled"`
	AlertCritical    int      `json:"alert_critical"`
	AlertLow         int      `json:"alert_low"`
	AlertCooldownMin int      `json:"alert_cooldown_min"`
}

// DefaultConfig returns a Config with sensible defaults.
// The seeding band and cadence defaults match a 40-slot server.
func DefaultConfig() Config {
	return Config{
		SchemaVersion:    CurrentSchemaVersion,
		Port:             8090,
		RosterURL:        "",
		IntervalMinutes:  15,
		SeedStart:        5,
		SeedEnd:          40,
		ListMode:         ListModeBlacklist,
		PlayerList:       []string{},
		MaxListSize:      10,
		LookbackDays:     30,
		PurgeDays:        45,
		LeaderboardSize:  10,
		AlertsEnabled:    false,
		AlertCritical:    2,
		AlertLow:         5,
		AlertCooldownMin: 30,
	}
}

// LoadConfig reads config from disk. If the file doesn't exist or is corrupt,
// it returns DefaultConfig with a warning logged (non-fatal).
func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	return LoadConfigFrom(path)
}

// LoadConfigFrom reads config from the specified path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, use defaults (not an error)
			return cfg, nil
		}
		log.Printf("Warning: failed to read config file: %v, using defaults", err)
		return cfg, nil
	}

	// Try to parse JSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		log.Printf("Warning: config file is corrupt: %v, using defaults", err)
		return DefaultConfig(), nil
	}

	// Check schema version
	if cfg.SchemaVersion != CurrentSchemaVersion {
		log.Printf("Warning: config schema version mismatch (got %d, expected %d), using defaults",
			cfg.SchemaVersion, CurrentSchemaVersion)
		return DefaultConfig(), nil
	}

	// Normalize/validate values
	cfg = normalizeConfig(cfg)

	return cfg, nil
}

// normalizeConfig validates and normalizes config values.
func normalizeConfig(cfg Config) Config {
	defaults := DefaultConfig()

	// Ensure schema version
	cfg.SchemaVersion = CurrentSchemaVersion

	// Validate port
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaults.Port
	}

	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = defaults.IntervalMinutes
	}

	// The seeding band must be a non-empty range
	if cfg.SeedStart < 0 {
		cfg.SeedStart = defaults.SeedStart
	}
	if cfg.SeedEnd < cfg.SeedStart {
		cfg.SeedEnd = defaults.SeedEnd
	}
	if cfg.SeedEnd < cfg.SeedStart {
		cfg.SeedStart = defaults.SeedStart
	}

	if cfg.ListMode != ListModeBlacklist && cfg.ListMode != ListModeWhitelist {
		cfg.ListMode = defaults.ListMode
	}
	if cfg.MaxListSize <= 0 {
		cfg.MaxListSize = defaults.MaxListSize
	}
	if cfg.PlayerList == nil {
		cfg.PlayerList = []string{}
	}

	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaults.LookbackDays
	}
	if cfg.PurgeDays <= 0 {
		cfg.PurgeDays = defaults.PurgeDays
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaults.LeaderboardSize
	}

	if cfg.AlertCritical < 0 {
		cfg.AlertCritical = defaults.AlertCritical
	}
	if cfg.AlertLow < cfg.AlertCritical {
		cfg.AlertLow = cfg.AlertCritical
	}
	if cfg.AlertCooldownMin <= 0 {
		cfg.AlertCooldownMin = defaults.AlertCooldownMin
	}

	return cfg
}

// SaveConfig writes config to disk atomically.
func SaveConfig(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	return SaveConfigTo(cfg, path)
}

// SaveConfigTo writes config to the specified path atomically.
func SaveConfigTo(cfg Config, path string) error {
	// Ensure schema version is set
	cfg.SchemaVersion = CurrentSchemaVersion

	return writeJSONAtomic(path, cfg)
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables take highest priority over config file values.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}

	if v := os.Getenv(EnvRosterURL); v != "" {
		cfg.RosterURL = v
	}

	if v := os.Getenv(EnvIntervalMin); v != "" {
		if min, err := strconv.Atoi(v); err == nil && min > 0 {
			cfg.IntervalMinutes = min
		}
	}

	if v := os.Getenv(EnvSeedStart); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SeedStart = n
		}
	}

	if v := os.Getenv(EnvSeedEnd); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SeedEnd = n
		}
	}

	if v := os.Getenv(EnvLookbackDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LookbackDays = n
		}
	}

	if v := os.Getenv(EnvPurgeDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PurgeDays = n
		}
	}

	if v := os.Getenv(EnvListMode); v != "" {
		mode := strings.ToLower(strings.TrimSpace(v))
		if mode == ListModeBlacklist || mode == ListModeWhitelist {
			cfg.ListMode = mode
		}
	}

	return cfg
}
