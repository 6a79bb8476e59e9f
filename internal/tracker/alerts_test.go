package tracker

import (
	"testing"
	"time"
)

func alertCfg() AlertConfig {
	return AlertConfig{
		Enabled:           true,
		CriticalThreshold: 2,
		LowThreshold:      5,
		Cooldown:          30 * time.Minute,
	}
}

func TestClassify(t *testing.T) {
	cfg := alertCfg()

	cases := []struct {
		players int
		tier    string
	}{
		{0, TierCritical},
		{2, TierCritical},
		{3, TierLow},
		{5, TierLow},
		{6, ""},
		{40, ""},
	}
	for _, c := range cases {
		f := classify(c.players, cfg)
		got := ""
		if f != nil {
			got = f.tier
		}
		if got != c.tier {
			t.Errorf("classify(%d) = %q, want %q", c.players, got, c.tier)
		}
	}
}

func TestAlertEngine_Cooldown(t *testing.T) {
	eng := newAlertEngine()
	cfg := alertCfg()
	start := time.Date(2026, 2, 10, 20, 0, 0, 0, time.UTC)

	if f := eng.evaluate(1, cfg, start); f == nil || f.tier != TierCritical {
		t.Fatalf("first evaluation should fire critical, got %+v", f)
	}
	if f := eng.evaluate(1, cfg, start.Add(10*time.Minute)); f != nil {
		t.Errorf("within cooldown should not fire, got %+v", f)
	}
	if f := eng.evaluate(1, cfg, start.Add(31*time.Minute)); f == nil {
		t.Error("after cooldown should fire again")
	}
}

func TestAlertEngine_TiersIndependent(t *testing.T) {
	eng := newAlertEngine()
	cfg := alertCfg()
	start := time.Date(2026, 2, 10, 20, 0, 0, 0, time.UTC)

	if f := eng.evaluate(1, cfg, start); f == nil || f.tier != TierCritical {
		t.Fatalf("expected critical, got %+v", f)
	}
	// The low tier has its own cooldown window.
	if f := eng.evaluate(4, cfg, start.Add(time.Minute)); f == nil || f.tier != TierLow {
		t.Errorf("low tier should fire independently, got %+v", f)
	}
}

func TestAlertEngine_CooldownAdvancesOnFire(t *testing.T) {
	eng := newAlertEngine()
	cfg := alertCfg()
	start := time.Date(2026, 2, 10, 20, 0, 0, 0, time.UTC)

	// evaluate advances last-fired whether or not delivery later succeeds.
	if f := eng.evaluate(1, cfg, start); f == nil {
		t.Fatal("expected firing")
	}
	if f := eng.evaluate(1, cfg, start.Add(time.Second)); f != nil {
		t.Error("immediate re-evaluation must be suppressed")
	}
}

func TestAlertEngine_Status(t *testing.T) {
	eng := newAlertEngine()
	cfg := alertCfg()
	start := time.Date(2026, 2, 10, 20, 0, 0, 0, time.UTC)

	eng.evaluate(1, cfg, start)
	status := eng.status(cfg, start.Add(10*time.Minute))

	if !status.Enabled {
		t.Error("expected enabled")
	}
	if len(status.Tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(status.Tiers))
	}

	var crit, low TierStatus
	for _, tier := range status.Tiers {
		switch tier.Name {
		case TierCritical:
			crit = tier
		case TierLow:
			low = tier
		}
	}
	if crit.LastFired != start {
		t.Errorf("critical last fired: expected %v, got %v", start, crit.LastFired)
	}
	if crit.CooldownRemaining != 20*time.Minute {
		t.Errorf("expected 20m remaining, got %v", crit.CooldownRemaining)
	}
	if !low.LastFired.IsZero() {
		t.Error("low tier never fired")
	}
}
