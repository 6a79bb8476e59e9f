package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnug/seedtracker/internal/store"
)

// ErrNotInitialized is returned by data queries when storage never came up.
var ErrNotInitialized = errors.New("tracker not initialized")

// Result is the outcome of an administrative command. Expected validation
// failures (list full, duplicate entry, not found) come back as a failed
// Result, never as an error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Status is a snapshot of the engine state for reporting.
type Status struct {
	Initialized  bool      `json:"initialized"`
	Started      bool      `json:"started"`
	LastTick     time.Time `json:"last_tick,omitzero"`
	TickCount    int64     `json:"tick_count"`
	OpenSessions int       `json:"open_sessions"`
	ListMode     ListMode  `json:"list_mode"`
	ListEntries  []string  `json:"list_entries"`
	SeedStart    int       `json:"seed_start"`
	SeedEnd      int       `json:"seed_end"`
}

// AnalyticsReport bundles the derived analytics queries.
type AnalyticsReport struct {
	Days         int                     `json:"days"`
	PeakHours    []store.HourlyActivity  `json:"peak_hours"`
	Trend        []store.DailyTrendPoint `json:"trend"`
	SuccessRate  float64                 `json:"success_rate"`
	SeedingHours int                     `json:"seeding_hours"`
}

// Recommendation is one suggested seeding window.
type Recommendation struct {
	Hour       int     `json:"hour"`
	AvgPlayers float64 `json:"avg_players"`
	Reason     string  `json:"reason"`
}

// AlertConfigUpdate carries optional alert config changes; nil fields keep
// the current value.
type AlertConfigUpdate struct {
	Enabled     *bool `json:"enabled,omitempty"`
	Critical    *int  `json:"critical,omitempty"`
	Low         *int  `json:"low,omitempty"`
	CooldownMin *int  `json:"cooldown_min,omitempty"`
}

// Status returns the current engine state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Status{
		Initialized:  t.initialized(),
		Started:      t.started,
		LastTick:     t.lastTick,
		TickCount:    t.tickCount,
		OpenSessions: t.openSessions,
		ListMode:     t.cfg.ListMode,
		ListEntries:  t.cfg.copyList(),
		SeedStart:    t.cfg.SeedStart,
		SeedEnd:      t.cfg.SeedEnd,
	}
}

// AddToList adds a player id to the tracking list.
func (t *Tracker) AddToList(uid string) Result {
	if !t.initialized() {
		return failure("tracker not initialized")
	}

	normalized := NormalizeUID(uid)
	if normalized == "" {
		return failure("player uid must not be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.cfg.PlayerList) >= t.cfg.MaxListSize {
		return failure("list is full (max %d entries)", t.cfg.MaxListSize)
	}
	for _, entry := range t.cfg.PlayerList {
		if entry == normalized {
			return failure("uid %q is already on the list", normalized)
		}
	}

	list := append(t.cfg.copyList(), normalized)
	t.cfg = t.cfg.withList(list)
	t.notifyConfigChangeLocked()
	return success("uid %q added to the %s", normalized, t.cfg.ListMode)
}

// RemoveFromList removes a player id from the tracking list.
func (t *Tracker) RemoveFromList(uid string) Result {
	if !t.initialized() {
		return failure("tracker not initialized")
	}

	normalized := NormalizeUID(uid)
	if normalized == "" {
		return failure("player uid must not be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	list := t.cfg.copyList()
	for i, entry := range list {
		if entry == normalized {
			list = append(list[:i], list[i+1:]...)
			t.cfg = t.cfg.withList(list)
			t.notifyConfigChangeLocked()
			return success("uid %q removed from the %s", normalized, t.cfg.ListMode)
		}
	}
	return failure("uid %q is not on the list", normalized)
}

// ListEntries returns the current tracking list.
func (t *Tracker) ListEntries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.copyList()
}

// TopSeeders returns the ranked totals within the configured lookback.
func (t *Tracker) TopSeeders(ctx context.Context, limit int) ([]store.SeederTotal, error) {
	if !t.initialized() {
		return nil, ErrNotInitialized
	}

	t.mu.Lock()
	lookback := t.cfg.LookbackDays
	size := t.cfg.LeaderboardSize
	t.mu.Unlock()

	if limit <= 0 {
		limit = size
	}
	return t.store.TopSeeders(ctx, limit, lookback, t.nowFunc())
}

// TopStreaks returns the ranked streak records.
func (t *Tracker) TopStreaks(ctx context.Context, limit int) ([]store.StreakRecord, error) {
	if !t.initialized() {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = 10
	}
	return t.store.TopStreaks(ctx, limit)
}

// Analytics returns the derived population analytics over the last days.
func (t *Tracker) Analytics(ctx context.Context, days int) (*AnalyticsReport, error) {
	if !t.initialized() {
		return nil, ErrNotInitialized
	}
	if days <= 0 {
		days = 7
	}
	now := t.nowFunc()

	peak, err := t.store.PeakHours(ctx, days, now)
	if err != nil {
		return nil, err
	}
	trend, err := t.store.DailyTrend(ctx, days, now)
	if err != nil {
		return nil, err
	}
	samples, err := t.store.ListSamples(ctx, days, now)
	if err != nil {
		return nil, err
	}

	rate, seedingHours := successRate(samples)
	return &AnalyticsReport{
		Days:         days,
		PeakHours:    peak,
		Trend:        trend,
		SuccessRate:  rate,
		SeedingHours: seedingHours,
	}, nil
}

// successRate computes the fraction of seeding-active hours whose directly
// following recorded hour held or improved the population. Hours without a
// consecutive successor (gaps in recording) are not counted.
func successRate(samples []store.AnalyticsSample) (rate float64, seedingHours int) {
	var total, successes int
	for i := 0; i < len(samples); i++ {
		if samples[i].SeedingActive {
			seedingHours++
		}
		if i+1 >= len(samples) || !samples[i].SeedingActive {
			continue
		}
		if !consecutiveHours(samples[i], samples[i+1]) {
			continue
		}
		total++
		if samples[i+1].PlayerCount >= samples[i].PlayerCount {
			successes++
		}
	}
	if total == 0 {
		return 0, seedingHours
	}
	return float64(successes) / float64(total), seedingHours
}

// consecutiveHours reports whether b is the hour directly after a.
func consecutiveHours(a, b store.AnalyticsSample) bool {
	if a.Date == b.Date {
		return b.Hour == a.Hour+1
	}
	if a.Hour != 23 || b.Hour != 0 {
		return false
	}
	ad, errA := time.Parse(store.DateFormat, a.Date)
	bd, errB := time.Parse(store.DateFormat, b.Date)
	if errA != nil || errB != nil {
		return false
	}
	return daysBetween(ad, bd) == 1
}

// EffectiveSeeders returns players ranked by minutes weighted with distinct
// active days.
func (t *Tracker) EffectiveSeeders(ctx context.Context, limit int) ([]store.EffectiveSeeder, error) {
	if !t.initialized() {
		return nil, ErrNotInitialized
	}

	t.mu.Lock()
	lookback := t.cfg.LookbackDays
	t.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	return t.store.EffectiveSeeders(ctx, limit, lookback, t.nowFunc())
}

// SmartRecommendations suggests the best seeding windows from recent
// analytics.
func (t *Tracker) SmartRecommendations(ctx context.Context) ([]Recommendation, error) {
	if !t.initialized() {
		return nil, ErrNotInitialized
	}

	const recommendationDays = 30
	now := t.nowFunc()

	peak, err := t.store.PeakHours(ctx, recommendationDays, now)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, 3)
	for i, h := range peak {
		if i >= 3 {
			break
		}
		recs = append(recs, Recommendation{
			Hour:       h.Hour,
			AvgPlayers: h.AvgPlayers,
			Reason: fmt.Sprintf("seeding succeeded in %d of the last %d days around %02d:00 (avg %.1f players)",
				h.SeedingHours, recommendationDays, h.Hour, h.AvgPlayers),
		})
	}
	return recs, nil
}

// AlertStatus returns the alert tier state.
func (t *Tracker) AlertStatus() AlertStatus {
	t.mu.Lock()
	cfg := t.cfg.Alerts
	t.mu.Unlock()
	return t.alertState.status(cfg, t.nowFunc())
}

// UpdateAlertConfig applies a partial alert configuration change.
func (t *Tracker) UpdateAlertConfig(update AlertConfigUpdate) Result {
	if !t.initialized() {
		return failure("tracker not initialized")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.cfg.Alerts
	if update.Enabled != nil {
		next.Enabled = *update.Enabled
	}
	if update.Critical != nil {
		next.CriticalThreshold = *update.Critical
	}
	if update.Low != nil {
		next.LowThreshold = *update.Low
	}
	if update.CooldownMin != nil {
		next.Cooldown = time.Duration(*update.CooldownMin) * time.Minute
	}

	if next.CriticalThreshold < 0 {
		return failure("critical threshold must not be negative")
	}
	if next.LowThreshold < next.CriticalThreshold {
		return failure("low threshold (%d) must be >= critical threshold (%d)",
			next.LowThreshold, next.CriticalThreshold)
	}
	if next.Cooldown <= 0 {
		return failure("cooldown must be positive")
	}

	t.cfg.Alerts = next
	t.notifyConfigChangeLocked()
	return success("alert config updated")
}

// ResetAllTotals deletes every seeder total. The published leaderboard is
// refreshed on the next tick.
func (t *Tracker) ResetAllTotals(ctx context.Context) Result {
	if !t.initialized() {
		return failure("tracker not initialized")
	}

	if err := t.store.ResetTotals(ctx); err != nil {
		return failure("reset failed: %v", err)
	}
	return success("all seeding totals cleared")
}

// notifyConfigChangeLocked invokes the persistence hook with the new config
// snapshot. Caller must hold t.mu.
func (t *Tracker) notifyConfigChangeLocked() {
	if t.onConfigChange == nil {
		return
	}
	cfg := t.cfg
	cfg.PlayerList = t.cfg.copyList()
	go t.onConfigChange(cfg)
}
