package notify

import (
	"fmt"
	"time"
)

// Discord embed color constants.
const (
	ColorLeaderboard = 0x00AE86 // Teal, matches the long-standing leaderboard look
	ColorCritical    = 0xFF0000 // Population critically low
	ColorLow         = 0xFFA500 // Population low
)

// LeaderboardEntry is one ranked row for the leaderboard embed.
type LeaderboardEntry struct {
	Name    string
	Minutes int
}

// BuildLeaderboardPayload renders the ranked top seeders as a single embed.
func BuildLeaderboardPayload(entries []LeaderboardEntry, lookbackDays int, now time.Time) Payload {
	embed := Embed{
		Title:     fmt.Sprintf("🏆 Top %d Seeders (Last %d Days)", len(entries), lookbackDays),
		Color:     ColorLeaderboard,
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	for i, e := range entries {
		hours := float64(e.Minutes) / 60
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  fmt.Sprintf("%d. %s", i+1, e.Name),
			Value: fmt.Sprintf("%.2f hours (%d minutes)", hours, e.Minutes),
		})
	}

	return Payload{Embeds: []Embed{embed}}
}

// BuildAlertPayload renders a population alert for one tier.
func BuildAlertPayload(tier string, playerCount, threshold int, now time.Time) Payload {
	color := ColorLow
	title := "⚠️ Server population low"
	if tier == "critical" {
		color = ColorCritical
		title = "🚨 Server population critical"
	}

	embed := Embed{
		Title: title,
		Description: fmt.Sprintf("%d players online (threshold %d). Seeders needed!",
			playerCount, threshold),
		Color:     color,
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	return Payload{Embeds: []Embed{embed}}
}
