package tracker

import (
	"time"

	"github.com/MrSnug/seedtracker/internal/store"
	"github.com/google/uuid"
)

// session is one player's open seeding presence. Sessions live only in
// memory; they are flushed to storage when they close and are not rebuilt
// after a restart.
type session struct {
	id        string
	name      string
	startedAt time.Time
	lastTick  time.Time
	minutes   int
}

// sessionSet aggregates open sessions keyed by normalized player UID.
// It is owned by the engine and only touched from within a tick.
type sessionSet struct {
	open map[string]*session
}

func newSessionSet() *sessionSet {
	return &sessionSet{open: make(map[string]*session)}
}

// accrue credits minutes to the player's open session, starting one if
// needed.
func (s *sessionSet) accrue(uid, name string, now time.Time, minutes int) {
	sess, ok := s.open[uid]
	if !ok {
		sess = &session{
			id:        uuid.NewString(),
			startedAt: now,
		}
		s.open[uid] = sess
	}
	sess.name = name
	sess.lastTick = now
	sess.minutes += minutes
}

// sweep closes every open session whose player is not in present and returns
// the closed sessions for persistence.
func (s *sessionSet) sweep(present map[string]bool, now time.Time) []store.SeedingSession {
	var closed []store.SeedingSession
	for uid, sess := range s.open {
		if present[uid] {
			continue
		}
		closed = append(closed, s.toRow(uid, sess, now))
		delete(s.open, uid)
	}
	return closed
}

// closeAll closes every open session (seeding ended or the engine stopped).
func (s *sessionSet) closeAll(now time.Time) []store.SeedingSession {
	return s.sweep(map[string]bool{}, now)
}

func (s *sessionSet) toRow(uid string, sess *session, now time.Time) store.SeedingSession {
	ended := sess.lastTick
	if ended.IsZero() {
		ended = now
	}
	return store.SeedingSession{
		SessionID:  sess.id,
		PlayerUID:  uid,
		PlayerName: sess.name,
		StartedAt:  sess.startedAt,
		EndedAt:    ended,
		Minutes:    sess.minutes,
	}
}

// openCount returns the number of open sessions (for status reporting).
func (s *sessionSet) openCount() int {
	return len(s.open)
}
