package tracker

import "time"

// Alert tier names, checked lowest threshold first.
const (
	TierCritical = "critical"
	TierLow      = "low"
)

// firing describes one alert the engine decided to raise.
type firing struct {
	tier      string
	threshold int
}

// TierStatus is the externally visible state of one alert tier.
type TierStatus struct {
	Name              string        `json:"name"`
	Threshold         int           `json:"threshold"`
	LastFired         time.Time     `json:"last_fired,omitzero"`
	CooldownRemaining time.Duration `json:"cooldown_remaining"`
}

// AlertStatus is the externally visible alert engine state.
type AlertStatus struct {
	Enabled  bool          `json:"enabled"`
	Cooldown time.Duration `json:"cooldown"`
	Tiers    []TierStatus  `json:"tiers"`
}

// alertEngine holds per-tier last-fired timestamps. The state lives for the
// engine's process lifetime only and is reset on restart.
type alertEngine struct {
	lastFired map[string]time.Time
}

func newAlertEngine() *alertEngine {
	return &alertEngine{lastFired: make(map[string]time.Time)}
}

// classify returns the applicable tier for a roster size, or nil when the
// population exceeds every threshold. Critical is checked first so the most
// severe applicable tier wins.
func classify(playerCount int, cfg AlertConfig) *firing {
	if playerCount <= cfg.CriticalThreshold {
		return &firing{tier: TierCritical, threshold: cfg.CriticalThreshold}
	}
	if playerCount <= cfg.LowThreshold {
		return &firing{tier: TierLow, threshold: cfg.LowThreshold}
	}
	return nil
}

// evaluate decides whether an alert fires for the current roster size.
// When a tier applies and its cooldown has elapsed, the last-fired timestamp
// advances immediately: delivery failures do not earn a retry within the
// same window.
func (a *alertEngine) evaluate(playerCount int, cfg AlertConfig, now time.Time) *firing {
	f := classify(playerCount, cfg)
	if f == nil {
		return nil
	}

	if last, ok := a.lastFired[f.tier]; ok && now.Sub(last) < cfg.Cooldown {
		return nil
	}

	a.lastFired[f.tier] = now
	return f
}

// status snapshots the tier state for reporting.
func (a *alertEngine) status(cfg AlertConfig, now time.Time) AlertStatus {
	tiers := []TierStatus{
		{Name: TierCritical, Threshold: cfg.CriticalThreshold},
		{Name: TierLow, Threshold: cfg.LowThreshold},
	}
	for i := range tiers {
		last, ok := a.lastFired[tiers[i].Name]
		if !ok {
			continue
		}
		tiers[i].LastFired = last
		if remaining := cfg.Cooldown - now.Sub(last); remaining > 0 {
			tiers[i].CooldownRemaining = remaining
		}
	}
	return AlertStatus{
		Enabled:  cfg.Enabled,
		Cooldown: cfg.Cooldown,
		Tiers:    tiers,
	}
}
