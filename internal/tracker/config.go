package tracker

import (
	"time"

	"github.com/MrSnug/seedtracker/internal/config"
)

// AlertConfig holds the alert tier thresholds and shared cooldown.
type AlertConfig struct {
	Enabled           bool          `json:"enabled"`
	CriticalThreshold int           `json:"critical_threshold"`
	LowThreshold      int           `json:"low_threshold"`
	Cooldown          time.Duration `json:"cooldown"`
}

// Config is an immutable snapshot of the engine configuration. Ticks capture
// one snapshot at tick start; administrative updates swap in a fresh value
// and never mutate a snapshot in place.
type Config struct {
	IntervalMinutes int
	SeedStart       int
	SeedEnd         int
	ListMode        ListMode
	PlayerList      []string
	MaxListSize     int
	LookbackDays    int
	PurgeDays       int
	LeaderboardSize int
	Alerts          AlertConfig
}

// FromAppConfig converts the persisted application config into an engine
// snapshot. List entries are normalized up to the configured maximum, the
// same cap the original ignore list carried.
func FromAppConfig(c config.Config) Config {
	mode := ModeBlacklist
	if c.ListMode == config.ListModeWhitelist {
		mode = ModeWhitelist
	}

	list := make([]string, 0, len(c.PlayerList))
	for _, entry := range c.PlayerList {
		if len(list) >= c.MaxListSize {
			break
		}
		if normalized := NormalizeUID(entry); normalized != "" {
			list = append(list, normalized)
		}
	}

	return Config{
		IntervalMinutes: c.IntervalMinutes,
		SeedStart:       c.SeedStart,
		SeedEnd:         c.SeedEnd,
		ListMode:        mode,
		PlayerList:      list,
		MaxListSize:     c.MaxListSize,
		LookbackDays:    c.LookbackDays,
		PurgeDays:       c.PurgeDays,
		LeaderboardSize: c.LeaderboardSize,
		Alerts: AlertConfig{
			Enabled:           c.AlertsEnabled,
			CriticalThreshold: c.AlertCritical,
			LowThreshold:      c.AlertLow,
			Cooldown:          time.Duration(c.AlertCooldownMin) * time.Minute,
		},
	}
}

// withList returns a copy of the config with a replaced player list.
func (c Config) withList(list []string) Config {
	c.PlayerList = list
	return c
}

// copyList returns a defensive copy of the player list.
func (c Config) copyList() []string {
	return append([]string(nil), c.PlayerList...)
}
