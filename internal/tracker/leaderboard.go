package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrSnug/seedtracker/internal/notify"
)

// leaderboardSync republishes the ranked top seeders only when the ranking
// content changes. It remembers the last published message so updates edit
// in place, falling back to a fresh message when the old one is gone.
type leaderboardSync struct {
	publisher notify.Publisher
	logger    *slog.Logger

	lastFingerprint string
	messageRef      notify.MessageRef
}

func newLeaderboardSync(publisher notify.Publisher, logger *slog.Logger) *leaderboardSync {
	return &leaderboardSync{
		publisher: publisher,
		logger:    logger,
	}
}

// fingerprint builds a content identity for a ranking: ordered (name,
// minutes) pairs. Two rankings with the same fingerprint render the same
// leaderboard.
func fingerprint(entries []notify.LeaderboardEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s\x00%d\n", e.Name, e.Minutes)
	}
	return sb.String()
}

// sync publishes the ranking if it differs from the last published one.
// An empty ranking is never published.
func (l *leaderboardSync) sync(ctx context.Context, entries []notify.LeaderboardEntry, lookbackDays int, now time.Time) {
	if l.publisher == nil || len(entries) == 0 {
		return
	}

	fp := fingerprint(entries)
	if fp == l.lastFingerprint {
		return
	}

	payload := notify.BuildLeaderboardPayload(entries, lookbackDays, now)

	if l.messageRef != "" {
		err := l.publisher.Edit(ctx, l.messageRef, payload)
		if err == nil {
			l.lastFingerprint = fp
			return
		}
		if errors.Is(err, notify.ErrDisabled) {
			return
		}
		// Message was likely deleted; fall through and publish a new one.
		l.logger.Warn("leaderboard edit failed, publishing new message", "error", err)
	}

	ref, err := l.publisher.Publish(ctx, payload)
	if err != nil {
		if !errors.Is(err, notify.ErrDisabled) {
			l.logger.Error("leaderboard publish failed", "error", err)
		}
		return
	}

	l.messageRef = ref
	l.lastFingerprint = fp
}
