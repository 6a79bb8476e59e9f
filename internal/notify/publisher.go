// Package notify provides Discord webhook publishing for leaderboards and alerts.
package notify

import (
	"context"
	"time"
)

// MessageRef identifies a previously published message so it can be edited.
type MessageRef string

// Publisher abstracts outbound Discord messaging for testing.
type Publisher interface {
	// Publish posts a new message and returns a reference to it.
	Publish(ctx context.Context, payload Payload) (MessageRef, error)

	// Edit replaces the content of a previously published message.
	Edit(ctx context.Context, ref MessageRef, payload Payload) error

	// Send posts a fire-and-forget message (no reference kept).
	Send(ctx context.Context, payload Payload) error
}

// PublisherStatus reports whether the publisher has shut itself off.
type PublisherStatus struct {
	Disabled       bool      `json:"disabled"`
	DisabledReason string    `json:"disabled_reason,omitempty"`
	DisabledAt     time.Time `json:"disabled_at,omitzero"`
}

// Payload represents a Discord webhook request body.
type Payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed represents a Discord embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}
