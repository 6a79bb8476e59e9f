package tracker

import "testing"

func TestNormalizeUID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ABC123", "abc123"},
		{"  abc123  ", "abc123"},
		{"\tAbC123\n", "abc123"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeUID(c.in); got != c.want {
			t.Errorf("NormalizeUID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestShouldTrack_Blacklist(t *testing.T) {
	list := []string{"afk1", "afk2"}

	if ShouldTrack("afk1", list, ModeBlacklist) {
		t.Error("listed player should be excluded in blacklist mode")
	}
	if ShouldTrack("AFK1", list, ModeBlacklist) {
		t.Error("membership must be case-insensitive")
	}
	if !ShouldTrack("alice", list, ModeBlacklist) {
		t.Error("unlisted player should be tracked in blacklist mode")
	}
	if !ShouldTrack("alice", nil, ModeBlacklist) {
		t.Error("empty blacklist should track everyone")
	}
}

func TestShouldTrack_Whitelist(t *testing.T) {
	list := []string{"alice", "bob"}

	if !ShouldTrack("alice", list, ModeWhitelist) {
		t.Error("listed player should be tracked in whitelist mode")
	}
	if !ShouldTrack("  ALICE ", list, ModeWhitelist) {
		t.Error("membership must normalize the candidate uid")
	}
	if ShouldTrack("mallory", list, ModeWhitelist) {
		t.Error("unlisted player should be excluded in whitelist mode")
	}
	if ShouldTrack("alice", nil, ModeWhitelist) {
		t.Error("empty whitelist should track no one")
	}
}

func TestShouldTrack_ModesAreComplementary(t *testing.T) {
	list := []string{"alice", "bob"}
	for _, uid := range []string{"alice", "bob", "charlie", "ALICE", ""} {
		black := ShouldTrack(uid, list, ModeBlacklist)
		white := ShouldTrack(uid, list, ModeWhitelist)
		if black == white {
			t.Errorf("uid %q: modes must disagree, both returned %v", uid, black)
		}
	}
}

func TestShouldTrack_ListEntriesNormalized(t *testing.T) {
	// Entries that were stored unnormalized still match.
	list := []string{" AFK1 "}
	if ShouldTrack("afk1", list, ModeBlacklist) {
		t.Error("unnormalized list entry should still match")
	}
}
