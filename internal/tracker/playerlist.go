package tracker

import "strings"

// ListMode determines whether the player list excludes or selects players
// for tracking.
type ListMode string

const (
	// ModeBlacklist tracks every player NOT on the list.
	ModeBlacklist ListMode = "blacklist"
	// ModeWhitelist tracks ONLY players on the list.
	ModeWhitelist ListMode = "whitelist"
)

// NormalizeUID lowercases and trims a player identifier. All list membership
// and storage keys use the normalized form.
func NormalizeUID(uid string) string {
	return strings.ToLower(strings.TrimSpace(uid))
}

// ShouldTrack reports whether a player is eligible for seeding credit.
// Pure and total: it never fails, and membership is case-insensitive.
func ShouldTrack(uid string, list []string, mode ListMode) bool {
	normalized := NormalizeUID(uid)

	listed := false
	for _, entry := range list {
		if NormalizeUID(entry) == normalized {
			listed = true
			break
		}
	}

	if mode == ModeWhitelist {
		return listed
	}
	return !listed
}
