package store

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

// migrate runs database migrations.
func (s *Store) migrate(ctx context.Context) error {
	if err := s.createTotalsTable(ctx); err != nil {
		return err
	}
	if err := s.createStreaksTable(ctx); err != nil {
		return err
	}
	if err := s.createAnalyticsTable(ctx); err != nil {
		return err
	}
	if err := s.createSessionsTable(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Store) createTotalsTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS seeder_totals (
		player_uid    TEXT PRIMARY KEY,
		player_name   TEXT NOT NULL,
		total_minutes INTEGER NOT NULL DEFAULT 0,
		last_seen     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_totals_last_seen ON seeder_totals(last_seen);
	CREATE INDEX IF NOT EXISTS idx_totals_minutes ON seeder_totals(total_minutes);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create seeder_totals table: %w", err)
	}
	return nil
}

func (s *Store) createStreaksTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS seeding_streaks (
		player_uid        TEXT PRIMARY KEY,
		player_name       TEXT NOT NULL,
		current_streak    INTEGER NOT NULL DEFAULT 0,
		longest_streak    INTEGER NOT NULL DEFAULT 0,
		last_active_date  TEXT NOT NULL,
		total_active_days INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_streaks_current ON seeding_streaks(current_streak);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create seeding_streaks table: %w", err)
	}
	return nil
}

func (s *Store) createAnalyticsTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS seeding_analytics (
		date           TEXT NOT NULL,
		hour           INTEGER NOT NULL,
		player_count   INTEGER NOT NULL,
		seeding_active INTEGER NOT NULL,
		eligible_count INTEGER NOT NULL,
		server_full    INTEGER NOT NULL,
		UNIQUE(date, hour)
	);

	CREATE INDEX IF NOT EXISTS idx_analytics_date ON seeding_analytics(date);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create seeding_analytics table: %w", err)
	}
	return nil
}

func (s *Store) createSessionsTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS seeding_sessions (
		session_id  TEXT PRIMARY KEY,
		player_uid  TEXT NOT NULL,
		player_name TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		ended_at    TEXT NOT NULL,
		minutes     INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_player ON seeding_sessions(player_uid);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create seeding_sessions table: %w", err)
	}
	return nil
}
