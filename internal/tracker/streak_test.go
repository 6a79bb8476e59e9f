package tracker

import (
	"testing"
	"time"

	"github.com/MrSnug/seedtracker/internal/store"
)

func day(s string) time.Time {
	d, err := time.Parse(store.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNextStreak_FirstObservation(t *testing.T) {
	rec, write, skewed := nextStreak(nil, "abc123", "Alice", day("2026-02-10"))

	if !write || skewed {
		t.Fatalf("expected write without skew, got write=%v skewed=%v", write, skewed)
	}
	want := store.StreakRecord{
		PlayerUID:       "abc123",
		PlayerName:      "Alice",
		CurrentStreak:   1,
		LongestStreak:   1,
		LastActiveDate:  "2026-02-10",
		TotalActiveDays: 1,
	}
	if rec != want {
		t.Errorf("got %+v, want %+v", rec, want)
	}
}

func TestNextStreak_SameDayIdempotent(t *testing.T) {
	prev := &store.StreakRecord{
		PlayerUID: "abc123", PlayerName: "Alice",
		CurrentStreak: 3, LongestStreak: 5,
		LastActiveDate: "2026-02-10", TotalActiveDays: 8,
	}

	_, write, skewed := nextStreak(prev, "abc123", "Alice", day("2026-02-10"))
	if write {
		t.Error("second observation on the same day must not write")
	}
	if skewed {
		t.Error("same day is not skew")
	}
}

func TestNextStreak_ConsecutiveDay(t *testing.T) {
	prev := &store.StreakRecord{
		PlayerUID: "abc123", PlayerName: "Alice",
		CurrentStreak: 3, LongestStreak: 3,
		LastActiveDate: "2026-02-09", TotalActiveDays: 8,
	}

	rec, write, _ := nextStreak(prev, "abc123", "Alice", day("2026-02-10"))
	if !write {
		t.Fatal("expected write")
	}
	if rec.CurrentStreak != 4 || rec.LongestStreak != 4 {
		t.Errorf("expected streak 4/4, got %d/%d", rec.CurrentStreak, rec.LongestStreak)
	}
	if rec.TotalActiveDays != 9 {
		t.Errorf("expected 9 active days, got %d", rec.TotalActiveDays)
	}
	if rec.LastActiveDate != "2026-02-10" {
		t.Errorf("expected last active 2026-02-10, got %q", rec.LastActiveDate)
	}
}

func TestNextStreak_GapResets(t *testing.T) {
	prev := &store.StreakRecord{
		PlayerUID: "abc123", PlayerName: "Alice",
		CurrentStreak: 6, LongestStreak: 6,
		LastActiveDate: "2026-02-05", TotalActiveDays: 10,
	}

	rec, write, skewed := nextStreak(prev, "abc123", "Alice", day("2026-02-10"))
	if !write || skewed {
		t.Fatalf("expected plain write, got write=%v skewed=%v", write, skewed)
	}
	if rec.CurrentStreak != 1 {
		t.Errorf("gap should reset current streak to 1, got %d", rec.CurrentStreak)
	}
	if rec.LongestStreak != 6 {
		t.Errorf("longest streak must survive a reset, got %d", rec.LongestStreak)
	}
	if rec.TotalActiveDays != 11 {
		t.Errorf("expected 11 active days, got %d", rec.TotalActiveDays)
	}
}

func TestNextStreak_ClockSkewResets(t *testing.T) {
	prev := &store.StreakRecord{
		PlayerUID: "abc123", PlayerName: "Alice",
		CurrentStreak: 4, LongestStreak: 4,
		LastActiveDate: "2026-02-12", TotalActiveDays: 4,
	}

	rec, write, skewed := nextStreak(prev, "abc123", "Alice", day("2026-02-10"))
	if !write {
		t.Fatal("expected write")
	}
	if !skewed {
		t.Error("today before the stored date should report skew")
	}
	if rec.CurrentStreak != 1 {
		t.Errorf("skew should reset current streak to 1, got %d", rec.CurrentStreak)
	}
	if rec.LastActiveDate != "2026-02-10" {
		t.Errorf("expected last active 2026-02-10, got %q", rec.LastActiveDate)
	}
}

func TestNextStreak_UnparseableDateResets(t *testing.T) {
	prev := &store.StreakRecord{
		PlayerUID: "abc123", PlayerName: "Alice",
		CurrentStreak: 4, LongestStreak: 4,
		LastActiveDate: "yesterday-ish", TotalActiveDays: 4,
	}

	rec, write, skewed := nextStreak(prev, "abc123", "Alice", day("2026-02-10"))
	if !write || skewed {
		t.Fatalf("expected plain write, got write=%v skewed=%v", write, skewed)
	}
	if rec.CurrentStreak != 1 || rec.LastActiveDate != "2026-02-10" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestNextStreak_RenamesPlayer(t *testing.T) {
	prev := &store.StreakRecord{
		PlayerUID: "abc123", PlayerName: "OldName",
		CurrentStreak: 1, LongestStreak: 1,
		LastActiveDate: "2026-02-09", TotalActiveDays: 1,
	}

	rec, _, _ := nextStreak(prev, "abc123", "NewName", day("2026-02-10"))
	if rec.PlayerName != "NewName" {
		t.Errorf("expected latest display name, got %q", rec.PlayerName)
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2026, 2, 9, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 2, 10, 0, 1, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 1 {
		t.Errorf("expected 1 day, got %d", got)
	}
	if got := daysBetween(b, a); got != -1 {
		t.Errorf("expected -1 day, got %d", got)
	}
	if got := daysBetween(a, a); got != 0 {
		t.Errorf("expected 0 days, got %d", got)
	}
}
