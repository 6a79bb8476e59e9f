package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPSource polls a game server status endpoint that returns the current
// players as a JSON array of {uid, name} objects.
type HTTPSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// HTTPSourceOption configures an HTTPSource.
type HTTPSourceOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPSourceOption {
	return func(s *HTTPSource) { s.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPSourceOption {
	return func(s *HTTPSource) { s.logger = logger }
}

// NewHTTPSource creates a roster source polling the given URL.
func NewHTTPSource(url string, opts ...HTTPSourceOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current implements Source. Transport or decode failures are returned as
// errors; callers treat them as an unknown roster.
func (s *HTTPSource) Current(ctx context.Context) ([]Player, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create roster request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch roster: unexpected status %d", resp.StatusCode)
	}

	var players []Player
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	s.logger.Debug("roster fetched", "players", len(players))
	return players, nil
}
