package store

import (
	"context"
	"fmt"
	"time"
)

// AnalyticsSample is one (date, hour) population snapshot.
type AnalyticsSample struct {
	Date          string `json:"date"`
	Hour          int    `json:"hour"`
	PlayerCount   int    `json:"player_count"`
	SeedingActive bool   `json:"seeding_active"`
	EligibleCount int    `json:"eligible_count"`
	ServerFull    bool   `json:"server_full"`
}

// HourlyActivity is one row of the peak-hours ranking.
type HourlyActivity struct {
	Hour         int     `json:"hour"`
	SeedingHours int     `json:"seeding_hours"`
	AvgPlayers   float64 `json:"avg_players"`
}

// DailyTrendPoint is one day of the population trend.
type DailyTrendPoint struct {
	Date       string  `json:"date"`
	AvgPlayers float64 `json:"avg_players"`
	MaxPlayers int     `json:"max_players"`
}

// EffectiveSeeder is one row of the combined minutes/active-days ranking.
type EffectiveSeeder struct {
	PlayerUID       string `json:"player_uid"`
	PlayerName      string `json:"player_name"`
	TotalMinutes    int    `json:"total_minutes"`
	TotalActiveDays int    `json:"total_active_days"`
	Score           int    `json:"score"`
}

// UpsertSample records the population snapshot for (date, hour). A second
// write within the same hour overwrites the sample rather than accumulating.
func (s *Store) UpsertSample(ctx context.Context, sample AnalyticsSample) error {
	const query = `
	INSERT INTO seeding_analytics (date, hour, player_count, seeding_active, eligible_count, server_full)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(date, hour) DO UPDATE SET
		player_count   = excluded.player_count,
		seeding_active = excluded.seeding_active,
		eligible_count = excluded.eligible_count,
		server_full    = excluded.server_full
	`

	_, err := s.db.ExecContext(ctx, query,
		sample.Date, sample.Hour, sample.PlayerCount,
		boolToInt(sample.SeedingActive), sample.EligibleCount, boolToInt(sample.ServerFull))
	if err != nil {
		return fmt.Errorf("upsert analytics sample %s/%d: %w", sample.Date, sample.Hour, err)
	}
	return nil
}

// PeakHours ranks hours of the day by how often they were seeding-active
// within the last days before now, busiest first.
func (s *Store) PeakHours(ctx context.Context, days int, now time.Time) ([]HourlyActivity, error) {
	cutoff := now.AddDate(0, 0, -days).Format(DateFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT hour, COUNT(*) AS seeding_hours, AVG(player_count) AS avg_players
		FROM seeding_analytics
		WHERE date >= ? AND seeding_active = 1
		GROUP BY hour
		ORDER BY seeding_hours DESC, hour ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query peak hours: %w", err)
	}
	defer rows.Close()

	var out []HourlyActivity
	for rows.Next() {
		var h HourlyActivity
		if err := rows.Scan(&h.Hour, &h.SeedingHours, &h.AvgPlayers); err != nil {
			return nil, fmt.Errorf("scan peak hour: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DailyTrend returns per-day average and peak population for the last days
// before now, oldest first.
func (s *Store) DailyTrend(ctx context.Context, days int, now time.Time) ([]DailyTrendPoint, error) {
	cutoff := now.AddDate(0, 0, -days).Format(DateFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, AVG(player_count) AS avg_players, MAX(player_count) AS max_players
		FROM seeding_analytics
		WHERE date >= ?
		GROUP BY date
		ORDER BY date ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query daily trend: %w", err)
	}
	defer rows.Close()

	var out []DailyTrendPoint
	for rows.Next() {
		var p DailyTrendPoint
		if err := rows.Scan(&p.Date, &p.AvgPlayers, &p.MaxPlayers); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSamples returns all samples on or after the cutoff date, ordered by
// (date, hour). Used to derive seeding success rates in the tracker.
func (s *Store) ListSamples(ctx context.Context, days int, now time.Time) ([]AnalyticsSample, error) {
	cutoff := now.AddDate(0, 0, -days).Format(DateFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, hour, player_count, seeding_active, eligible_count, server_full
		FROM seeding_analytics
		WHERE date >= ?
		ORDER BY date ASC, hour ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []AnalyticsSample
	for rows.Next() {
		var (
			sample       AnalyticsSample
			active, full int
		)
		if err := rows.Scan(&sample.Date, &sample.Hour, &sample.PlayerCount, &active, &sample.EligibleCount, &full); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sample.SeedingActive = active != 0
		sample.ServerFull = full != 0
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EffectiveSeeders ranks players by total minutes weighted by distinct
// active days, restricted to players seen within lookbackDays before now.
func (s *Store) EffectiveSeeders(ctx context.Context, limit, lookbackDays int, now time.Time) ([]EffectiveSeeder, error) {
	cutoff := now.AddDate(0, 0, -lookbackDays).UTC().Format(TimeFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.player_uid, t.player_name, t.total_minutes,
		       COALESCE(k.total_active_days, 1) AS active_days,
		       t.total_minutes * COALESCE(k.total_active_days, 1) AS score
		FROM seeder_totals t
		LEFT JOIN seeding_streaks k ON k.player_uid = t.player_uid
		WHERE t.last_seen >= ?
		ORDER BY score DESC, t.rowid ASC
		LIMIT ?
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query effective seeders: %w", err)
	}
	defer rows.Close()

	var out []EffectiveSeeder
	for rows.Next() {
		var e EffectiveSeeder
		if err := rows.Scan(&e.PlayerUID, &e.PlayerName, &e.TotalMinutes, &e.TotalActiveDays, &e.Score); err != nil {
			return nil, fmt.Errorf("scan effective seeder: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PurgeAnalytics deletes samples strictly older than the cutoff date.
func (s *Store) PurgeAnalytics(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM seeding_analytics WHERE date < ?
	`, cutoff.Format(DateFormat))
	if err != nil {
		return 0, fmt.Errorf("purge analytics: %w", err)
	}
	return result.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
