package store

import (
	"context"
	"fmt"
	"time"
)

// SeedingSession is one closed seeding session. Sessions are aggregated in
// memory by the tracker and flushed here best-effort when they close.
type SeedingSession struct {
	SessionID  string
	PlayerUID  string
	PlayerName string
	StartedAt  time.Time
	EndedAt    time.Time
	Minutes    int
}

// InsertSession persists a closed session. Duplicate session ids are ignored
// so a retried flush never double-counts.
func (s *Store) InsertSession(ctx context.Context, sess SeedingSession) error {
	const query = `
	INSERT INTO seeding_sessions (session_id, player_uid, player_name, started_at, ended_at, minutes)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		sess.SessionID, sess.PlayerUID, sess.PlayerName,
		sess.StartedAt.UTC().Format(TimeFormat), sess.EndedAt.UTC().Format(TimeFormat), sess.Minutes)
	if err != nil {
		return fmt.Errorf("insert session %q: %w", sess.SessionID, err)
	}
	return nil
}

// CountSessions returns the number of persisted sessions for one player.
func (s *Store) CountSessions(ctx context.Context, uid string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM seeding_sessions WHERE player_uid = ?
	`, uid).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions for %q: %w", uid, err)
	}
	return n, nil
}

// PurgeSessions deletes sessions that ended strictly before the cutoff.
func (s *Store) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM seeding_sessions WHERE ended_at < ?
	`, cutoff.UTC().Format(TimeFormat))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return result.RowsAffected()
}
