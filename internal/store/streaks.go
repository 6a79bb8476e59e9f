package store

import (
	"context"
	"fmt"
	"time"
)

// StreakRecord is one row of the seeding_streaks relation.
// LastActiveDate is a calendar date in DateFormat (no time component).
type StreakRecord struct {
	PlayerUID       string `json:"player_uid"`
	PlayerName      string `json:"player_name"`
	CurrentStreak   int    `json:"current_streak"`
	LongestStreak   int    `json:"longest_streak"`
	LastActiveDate  string `json:"last_active_date"`
	TotalActiveDays int    `json:"total_active_days"`
}

// GetStreak returns the streak record for one player, or nil if none exists.
func (s *Store) GetStreak(ctx context.Context, uid string) (*StreakRecord, error) {
	var r StreakRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT player_uid, player_name, current_streak, longest_streak, last_active_date, total_active_days
		FROM seeding_streaks
		WHERE player_uid = ?
	`, uid).Scan(&r.PlayerUID, &r.PlayerName, &r.CurrentStreak, &r.LongestStreak, &r.LastActiveDate, &r.TotalActiveDays)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get streak for %q: %w", uid, err)
	}
	return &r, nil
}

// PutStreak writes a streak record, replacing any existing row for the player.
func (s *Store) PutStreak(ctx context.Context, r StreakRecord) error {
	const query = `
	INSERT INTO seeding_streaks (player_uid, player_name, current_streak, longest_streak, last_active_date, total_active_days)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(player_uid) DO UPDATE SET
		player_name       = excluded.player_name,
		current_streak    = excluded.current_streak,
		longest_streak    = excluded.longest_streak,
		last_active_date  = excluded.last_active_date,
		total_active_days = excluded.total_active_days
	`

	_, err := s.db.ExecContext(ctx, query,
		r.PlayerUID, r.PlayerName, r.CurrentStreak, r.LongestStreak, r.LastActiveDate, r.TotalActiveDays)
	if err != nil {
		return fmt.Errorf("put streak for %q: %w", r.PlayerUID, err)
	}
	return nil
}

// TopStreaks returns up to limit streak records ranked by current_streak
// descending, then longest_streak descending, ties by insertion order.
func (s *Store) TopStreaks(ctx context.Context, limit int) ([]StreakRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_uid, player_name, current_streak, longest_streak, last_active_date, total_active_days
		FROM seeding_streaks
		ORDER BY current_streak DESC, longest_streak DESC, rowid ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top streaks: %w", err)
	}
	defer rows.Close()

	var out []StreakRecord
	for rows.Next() {
		var r StreakRecord
		if err := rows.Scan(&r.PlayerUID, &r.PlayerName, &r.CurrentStreak, &r.LongestStreak, &r.LastActiveDate, &r.TotalActiveDays); err != nil {
			return nil, fmt.Errorf("scan streak: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PurgeStreaks deletes streaks whose last_active_date is strictly older than
// the cutoff date.
func (s *Store) PurgeStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM seeding_streaks WHERE last_active_date < ?
	`, cutoff.Format(DateFormat))
	if err != nil {
		return 0, fmt.Errorf("purge streaks: %w", err)
	}
	return result.RowsAffected()
}
