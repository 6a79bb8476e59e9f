package store

import (
	"context"
	"testing"
	"time"
)

func TestInsertSession_DuplicateIgnored(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 10, 20, 0, 0, 0, time.UTC)

	sess := SeedingSession{
		SessionID:  "sess-1",
		PlayerUID:  "abc123",
		PlayerName: "Alice",
		StartedAt:  now.Add(-time.Hour),
		EndedAt:    now,
		Minutes:    60,
	}
	if err := st.InsertSession(ctx, sess); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// A retried flush with the same session id must not double-count.
	if err := st.InsertSession(ctx, sess); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	n, err := st.CountSessions(ctx, "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 session, got %d", n)
	}
}

func TestCountSessions_PerPlayer(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	sessions := []SeedingSession{
		{SessionID: "s1", PlayerUID: "a", PlayerName: "Alpha", StartedAt: now, EndedAt: now, Minutes: 15},
		{SessionID: "s2", PlayerUID: "a", PlayerName: "Alpha", StartedAt: now, EndedAt: now, Minutes: 30},
		{SessionID: "s3", PlayerUID: "b", PlayerName: "Bravo", StartedAt: now, EndedAt: now, Minutes: 15},
	}
	for _, s := range sessions {
		if err := st.InsertSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	n, err := st.CountSessions(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 sessions for a, got %d", n)
	}
}

func TestPurgeSessions_Boundary(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sessions := []SeedingSession{
		{SessionID: "old", PlayerUID: "a", PlayerName: "Alpha", StartedAt: cutoff.Add(-2 * time.Hour), EndedAt: cutoff.Add(-time.Hour), Minutes: 60},
		{SessionID: "edge", PlayerUID: "a", PlayerName: "Alpha", StartedAt: cutoff.Add(-time.Hour), EndedAt: cutoff, Minutes: 60},
		{SessionID: "new", PlayerUID: "a", PlayerName: "Alpha", StartedAt: cutoff, EndedAt: cutoff.Add(time.Hour), Minutes: 60},
	}
	for _, s := range sessions {
		if err := st.InsertSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := st.PurgeSessions(ctx, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected 1 session removed, got %d", removed)
	}

	n, err := st.CountSessions(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected sessions at and after the cutoff to survive, got %d", n)
	}
}
