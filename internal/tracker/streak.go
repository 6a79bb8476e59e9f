package tracker

import (
	"time"

	"github.com/MrSnug/seedtracker/internal/store"
)

// nextStreak computes the streak record that follows prev after the player
// was active on today. prev may be nil (first observation).
//
// Returns the updated record, whether a write is needed (false when the
// player was already recorded today), and whether today was earlier than the
// stored last-active date (clock skew, treated as a streak reset).
func nextStreak(prev *store.StreakRecord, uid, name string, today time.Time) (rec store.StreakRecord, write bool, skewed bool) {
	todayStr := today.Format(store.DateFormat)

	if prev == nil {
		return store.StreakRecord{
			PlayerUID:       uid,
			PlayerName:      name,
			CurrentStreak:   1,
			LongestStreak:   1,
			LastActiveDate:  todayStr,
			TotalActiveDays: 1,
		}, true, false
	}

	rec = *prev
	rec.PlayerName = name

	lastActive, err := time.Parse(store.DateFormat, prev.LastActiveDate)
	if err != nil {
		// Unparseable prior date behaves like a gap: reset to a fresh streak.
		rec.CurrentStreak = 1
		rec.TotalActiveDays++
		rec.LastActiveDate = todayStr
		rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)
		return rec, true, false
	}

	dayDiff := daysBetween(lastActive, today)

	switch {
	case dayDiff == 0:
		// Already recorded today; idempotent per calendar day.
		return rec, false, false

	case dayDiff == 1:
		rec.CurrentStreak++
		rec.TotalActiveDays++

	case dayDiff > 1:
		rec.CurrentStreak = 1
		rec.TotalActiveDays++

	default:
		// dayDiff < 0: today is before the stored last-active date. Reset
		// rather than guess; the caller logs the skew.
		rec.CurrentStreak = 1
		rec.TotalActiveDays++
		skewed = true
	}

	rec.LastActiveDate = todayStr
	rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)
	return rec, true, skewed
}

// daysBetween returns the whole calendar days from a to b, ignoring any time
// component.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
