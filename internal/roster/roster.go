// Package roster provides access to the game server's live player roster.
package roster

import "context"

// Player is one entry of a roster snapshot.
type Player struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Source abstracts roster retrieval for testing.
// A nil slice with a nil error means the roster is currently unknown.
type Source interface {
	// Current returns a snapshot of the players on the server.
	Current(ctx context.Context) ([]Player, error)
}
