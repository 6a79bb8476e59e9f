package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MrSnug/seedtracker/internal/notify"
	"github.com/MrSnug/seedtracker/internal/roster"
	"github.com/MrSnug/seedtracker/internal/store"
)

// purgeHour and purgeMinute fix the daily retention purge at 00:05 local time.
const (
	purgeHour   = 0
	purgeMinute = 5
)

// Tracker is the seeding engine: it samples the roster on a fixed cadence,
// accumulates totals, streaks, sessions and hourly analytics, raises
// population alerts and keeps the published leaderboard in sync.
//
// One Tracker owns its alert state, session set and leaderboard snapshot
// exclusively; ticks never run concurrently.
type Tracker struct {
	store     *store.Store
	roster    roster.Source
	alertsOut notify.Publisher
	logger    *slog.Logger
	afterFunc AfterFunc
	nowFunc   func() time.Time

	leaderboard *leaderboardSync
	alertState  *alertEngine
	sessions    *sessionSet

	// onConfigChange, when set, is invoked with each new config snapshot so
	// the surrounding code can persist it. Never called during a tick.
	onConfigChange func(Config)

	mu             sync.Mutex
	cfg            Config
	started        bool
	generation     uint64
	tickRunning    bool
	tickTimer      TimerHandle
	purgeTimer     TimerHandle
	purgeScheduled bool
	lastTick       time.Time
	tickCount      int64
	openSessions   int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithAfterFunc sets the timer function (for testing).
func WithAfterFunc(af AfterFunc) Option {
	return func(t *Tracker) { t.afterFunc = af }
}

// WithNowFunc sets the clock (for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(t *Tracker) { t.nowFunc = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithAlertPublisher sets the publisher used for population alerts.
func WithAlertPublisher(p notify.Publisher) Option {
	return func(t *Tracker) { t.alertsOut = p }
}

// WithConfigChangeHook sets the callback invoked after administrative
// config updates.
func WithConfigChangeHook(fn func(Config)) Option {
	return func(t *Tracker) { t.onConfigChange = fn }
}

// New creates a Tracker. st may be nil when storage was unavailable; the
// engine then stays uninitialized and every operation reports that instead
// of failing the host process. leaderboardOut may be nil to disable
// leaderboard publishing.
func New(st *store.Store, src roster.Source, leaderboardOut notify.Publisher, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		store:      st,
		roster:     src,
		logger:     slog.Default(),
		afterFunc:  DefaultAfterFunc,
		nowFunc:    time.Now,
		cfg:        cfg,
		alertState: newAlertEngine(),
		sessions:   newSessionSet(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.leaderboard = newLeaderboardSync(leaderboardOut, t.logger)
	return t
}

// initialized reports whether storage came up.
func (t *Tracker) initialized() bool {
	return t.store != nil
}

// Start begins periodic tracking: one tick immediately, then every
// IntervalMinutes. Calling Start on a running tracker restarts the tick
// and purge timers (picking up a changed interval) without double-arming
// anything.
func (t *Tracker) Start(ctx context.Context) {
	if !t.initialized() {
		t.logger.Warn("tracker not initialized, refusing to start")
		return
	}

	t.mu.Lock()
	if t.tickTimer != nil {
		t.tickTimer.Stop()
		t.tickTimer = nil
	}
	if t.purgeTimer != nil {
		t.purgeTimer.Stop()
		t.purgeTimer = nil
	}
	t.purgeScheduled = false
	t.started = true
	// A timer callback from before this Start may still be in flight;
	// bumping the generation keeps its chain from re-arming underneath
	// the one armed below.
	t.generation++
	gen := t.generation
	interval := time.Duration(t.cfg.IntervalMinutes) * time.Minute
	t.mu.Unlock()

	t.logger.Info("tracking started", "interval", interval)

	t.runTick(ctx)
	t.armTick(ctx, interval, gen)
	t.scheduleDailyPurge(ctx, gen)
}

// Stop cancels the tick and purge timers. Safe to call at any point,
// including when never started; in-flight storage writes are not rolled
// back.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = false
	t.generation++
	if t.tickTimer != nil {
		t.tickTimer.Stop()
		t.tickTimer = nil
	}
	if t.purgeTimer != nil {
		t.purgeTimer.Stop()
		t.purgeTimer = nil
	}
	t.purgeScheduled = false
}

// armTick schedules the next tick. gen ties the chain to the Start that
// created it: after a later Start or Stop the stale chain sees a newer
// generation here and dies out instead of overwriting the live timer.
func (t *Tracker) armTick(ctx context.Context, interval time.Duration, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || gen != t.generation {
		return
	}
	t.tickTimer = t.afterFunc(interval, func() {
		t.runTick(ctx)
		t.armTick(ctx, interval, gen)
	})
}

// scheduleDailyPurge arms the retention purge for the next 00:05 local time,
// then every 24 hours. The boolean guard ensures it is armed at most once
// per Start.
func (t *Tracker) scheduleDailyPurge(ctx context.Context, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.purgeScheduled || !t.started || gen != t.generation {
		return
	}
	t.purgeScheduled = true

	now := t.nowFunc()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, purgeHour, purgeMinute, 0, 0, now.Location())

	t.purgeTimer = t.afterFunc(next.Sub(now), func() {
		t.runPurge(ctx)
		t.armDailyPurge(ctx, gen)
	})
}

func (t *Tracker) armDailyPurge(ctx context.Context, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || gen != t.generation {
		return
	}
	t.purgeTimer = t.afterFunc(24*time.Hour, func() {
		t.runPurge(ctx)
		t.armDailyPurge(ctx, gen)
	})
}

// runTick executes one sampling cycle. Overlapping invocations are skipped:
// the shared session and cooldown state is not designed for concurrent
// mutation.
func (t *Tracker) runTick(ctx context.Context) {
	t.mu.Lock()
	if t.tickRunning {
		t.mu.Unlock()
		t.logger.Warn("previous tick still running, skipping")
		return
	}
	t.tickRunning = true
	cfg := t.cfg
	t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tick panicked", "panic", r)
		}
		t.mu.Lock()
		t.tickRunning = false
		t.lastTick = t.nowFunc()
		t.tickCount++
		t.openSessions = t.sessions.openCount()
		t.mu.Unlock()
	}()

	t.tick(ctx, cfg)
}

// tick runs one cycle: filter the roster, credit totals, streaks and
// sessions, record the hourly sample, evaluate alerts and refresh the
// leaderboard. A failure in any stage is contained there; later stages
// still run.
func (t *Tracker) tick(ctx context.Context, cfg Config) {
	now := t.nowFunc()

	players, err := t.roster.Current(ctx)
	if err != nil {
		t.logger.Warn("roster unavailable, treating as unknown", "error", err)
		players = nil
	}

	playerCount := len(players)
	seeding := playerCount >= cfg.SeedStart && playerCount <= cfg.SeedEnd

	present := make(map[string]bool)
	if seeding {
		for _, p := range players {
			if p.UID == "" || p.Name == "" {
				continue
			}
			uid := NormalizeUID(p.UID)
			if !ShouldTrack(uid, cfg.PlayerList, cfg.ListMode) {
				continue
			}

			if err := t.store.AccumulateMinutes(ctx, uid, p.Name, cfg.IntervalMinutes, now); err != nil {
				t.logger.Error("totals update failed, skipping player", "uid", uid, "error", err)
				continue
			}
			t.recordStreak(ctx, uid, p.Name, now)
			t.sessions.accrue(uid, p.Name, now, cfg.IntervalMinutes)
			present[uid] = true
		}
	}

	// Close sessions for players who left (or when seeding ended).
	for _, closed := range t.sessions.sweep(present, now) {
		if err := t.store.InsertSession(ctx, closed); err != nil {
			t.logger.Warn("session flush failed", "uid", closed.PlayerUID, "error", err)
		}
	}

	sample := store.AnalyticsSample{
		Date:          now.Format(store.DateFormat),
		Hour:          now.Hour(),
		PlayerCount:   playerCount,
		SeedingActive: seeding,
		EligibleCount: len(present),
		ServerFull:    playerCount >= cfg.SeedEnd,
	}
	if err := t.store.UpsertSample(ctx, sample); err != nil {
		t.logger.Error("analytics sample failed", "error", err)
	}

	if cfg.Alerts.Enabled {
		t.evaluateAlerts(ctx, playerCount, cfg, now)
	}

	t.syncLeaderboard(ctx, cfg, now)
}

func (t *Tracker) recordStreak(ctx context.Context, uid, name string, now time.Time) {
	prev, err := t.store.GetStreak(ctx, uid)
	if err != nil {
		t.logger.Error("streak read failed", "uid", uid, "error", err)
		return
	}

	rec, write, skewed := nextStreak(prev, uid, name, now)
	if skewed {
		t.logger.Warn("streak date went backwards, resetting streak",
			"uid", uid, "last_active", prev.LastActiveDate, "today", rec.LastActiveDate)
	}
	if !write {
		return
	}

	if err := t.store.PutStreak(ctx, rec); err != nil {
		t.logger.Error("streak write failed", "uid", uid, "error", err)
	}
}

func (t *Tracker) evaluateAlerts(ctx context.Context, playerCount int, cfg Config, now time.Time) {
	f := t.alertState.evaluate(playerCount, cfg.Alerts, now)
	if f == nil {
		return
	}

	t.logger.Info("population alert", "tier", f.tier, "players", playerCount, "threshold", f.threshold)

	if t.alertsOut == nil {
		return
	}
	payload := notify.BuildAlertPayload(f.tier, playerCount, f.threshold, now)
	if err := t.alertsOut.Send(ctx, payload); err != nil {
		// The cooldown already advanced: at most one attempt per window.
		t.logger.Warn("alert send failed", "tier", f.tier, "error", err)
	}
}

func (t *Tracker) syncLeaderboard(ctx context.Context, cfg Config, now time.Time) {
	totals, err := t.store.TopSeeders(ctx, cfg.LeaderboardSize, cfg.LookbackDays, now)
	if err != nil {
		t.logger.Error("leaderboard query failed", "error", err)
		return
	}

	entries := make([]notify.LeaderboardEntry, 0, len(totals))
	for _, row := range totals {
		entries = append(entries, notify.LeaderboardEntry{Name: row.PlayerName, Minutes: row.TotalMinutes})
	}

	t.leaderboard.sync(ctx, entries, cfg.LookbackDays, now)
}

// runPurge deletes aggregates older than the retention window from every
// store. Per-store failures are logged and do not stop the remaining purges.
func (t *Tracker) runPurge(ctx context.Context) {
	t.mu.Lock()
	purgeDays := t.cfg.PurgeDays
	t.mu.Unlock()

	now := t.nowFunc()
	cutoff := now.AddDate(0, 0, -purgeDays)

	if n, err := t.store.PurgeTotals(ctx, cutoff); err != nil {
		t.logger.Error("totals purge failed", "error", err)
	} else {
		t.logger.Info("purged stale totals", "removed", n, "purge_days", purgeDays)
	}

	if n, err := t.store.PurgeStreaks(ctx, cutoff); err != nil {
		t.logger.Error("streaks purge failed", "error", err)
	} else if n > 0 {
		t.logger.Info("purged stale streaks", "removed", n)
	}

	if n, err := t.store.PurgeAnalytics(ctx, cutoff); err != nil {
		t.logger.Error("analytics purge failed", "error", err)
	} else if n > 0 {
		t.logger.Info("purged stale analytics", "removed", n)
	}

	if n, err := t.store.PurgeSessions(ctx, cutoff); err != nil {
		t.logger.Error("sessions purge failed", "error", err)
	} else if n > 0 {
		t.logger.Info("purged stale sessions", "removed", n)
	}
}
