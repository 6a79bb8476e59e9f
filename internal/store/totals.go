package store

import (
	"context"
	"fmt"
	"time"
)

// SeederTotal is one row of the seeder_totals relation.
type SeederTotal struct {
	PlayerUID    string `json:"player_uid"`
	PlayerName   string `json:"player_name"`
	TotalMinutes int    `json:"total_minutes"`
	LastSeen     time.Time
}

// AccumulateMinutes upserts a seeder total: a new player starts at minutes,
// an existing player's total grows by minutes. The display name is always
// overwritten with the latest value and last_seen is set to seenAt.
func (s *Store) AccumulateMinutes(ctx context.Context, uid, name string, minutes int, seenAt time.Time) error {
	const query = `
	INSERT INTO seeder_totals (player_uid, player_name, total_minutes, last_seen)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(player_uid) DO UPDATE SET
		player_name   = excluded.player_name,
		total_minutes = total_minutes + excluded.total_minutes,
		last_seen     = excluded.last_seen
	`

	_, err := s.db.ExecContext(ctx, query, uid, name, minutes, seenAt.UTC().Format(TimeFormat))
	if err != nil {
		return fmt.Errorf("accumulate minutes for %q: %w", uid, err)
	}
	return nil
}

// TopSeeders returns up to limit totals ranked by total_minutes descending
// among players seen within the last lookbackDays before now. Ties keep
// insertion order (rowid).
func (s *Store) TopSeeders(ctx context.Context, limit, lookbackDays int, now time.Time) ([]SeederTotal, error) {
	cutoff := now.AddDate(0, 0, -lookbackDays).UTC().Format(TimeFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT player_uid, player_name, total_minutes, last_seen
		FROM seeder_totals
		WHERE last_seen >= ?
		ORDER BY total_minutes DESC, rowid ASC
		LIMIT ?
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query top seeders: %w", err)
	}
	defer rows.Close()

	var out []SeederTotal
	for rows.Next() {
		var (
			t        SeederTotal
			lastSeen string
		)
		if err := rows.Scan(&t.PlayerUID, &t.PlayerName, &t.TotalMinutes, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan seeder total: %w", err)
		}
		if ts, err := time.Parse(TimeFormat, lastSeen); err == nil {
			t.LastSeen = ts
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTotal returns the total for one player, or nil if no row exists.
func (s *Store) GetTotal(ctx context.Context, uid string) (*SeederTotal, error) {
	var (
		t        SeederTotal
		lastSeen string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT player_uid, player_name, total_minutes, last_seen
		FROM seeder_totals
		WHERE player_uid = ?
	`, uid).Scan(&t.PlayerUID, &t.PlayerName, &t.TotalMinutes, &lastSeen)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get total for %q: %w", uid, err)
	}
	if ts, err := time.Parse(TimeFormat, lastSeen); err == nil {
		t.LastSeen = ts
	}
	return &t, nil
}

// PurgeTotals deletes totals whose last_seen is strictly older than the
// cutoff. A row at exactly the cutoff is kept.
func (s *Store) PurgeTotals(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM seeder_totals WHERE last_seen < ?
	`, cutoff.UTC().Format(TimeFormat))
	if err != nil {
		return 0, fmt.Errorf("purge totals: %w", err)
	}
	return result.RowsAffected()
}

// ResetTotals deletes every seeder total unconditionally.
func (s *Store) ResetTotals(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM seeder_totals`); err != nil {
		return fmt.Errorf("reset totals: %w", err)
	}
	return nil
}
