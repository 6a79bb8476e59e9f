package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnug/seedtracker/internal/config"
)

// ErrDisabled is returned once a fatal webhook error has shut the publisher off.
var ErrDisabled = errors.New("publisher disabled")

// sendResult classifies the outcome of a webhook request.
type sendResult int

const (
	// sendOK indicates successful delivery.
	sendOK sendResult = iota
	// sendRetryable indicates a transient error (429, 5xx, network error).
	sendRetryable
	// sendFatal indicates a permanent error (401/403, invalid webhook).
	sendFatal
)

// WebhookPublisher implements Publisher against a Discord webhook.
// Publish uses ?wait=true so Discord returns the created message, whose id
// becomes the MessageRef; Edit PATCHes /messages/{id} on the same webhook.
type WebhookPublisher struct {
	webhookURL config.Secret
	client     *http.Client
	logger     *slog.Logger

	mu     sync.Mutex
	status PublisherStatus
}

// WebhookOption configures a WebhookPublisher.
type WebhookOption func(*WebhookPublisher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(p *WebhookPublisher) { p.client = client }
}

// WithPublisherLogger sets the logger.
func WithPublisherLogger(logger *slog.Logger) WebhookOption {
	return func(p *WebhookPublisher) { p.logger = logger }
}

// NewWebhookPublisher creates a publisher for the given webhook.
// The webhookURL is stored as a Secret and will appear as [REDACTED] in logs.
func NewWebhookPublisher(webhookURL config.Secret, opts ...WebhookOption) *WebhookPublisher {
	p := &WebhookPublisher{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish implements Publisher.
func (p *WebhookPublisher) Publish(ctx context.Context, payload Payload) (MessageRef, error) {
	if err := p.checkEnabled(); err != nil {
		return "", err
	}

	body, err := p.do(ctx, http.MethodPost, p.webhookURL.Value()+"?wait=true", payload)
	if err != nil {
		return "", err
	}

	var msg struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("decode webhook response: %w", err)
	}
	if msg.ID == "" {
		return "", errors.New("webhook response missing message id")
	}
	return MessageRef(msg.ID), nil
}

// Edit implements Publisher.
func (p *WebhookPublisher) Edit(ctx context.Context, ref MessageRef, payload Payload) error {
	if err := p.checkEnabled(); err != nil {
		return err
	}
	if ref == "" {
		return errors.New("edit: empty message ref")
	}

	url := fmt.Sprintf("%s/messages/%s", p.webhookURL.Value(), ref)
	_, err := p.do(ctx, http.MethodPatch, url, payload)
	return err
}

// Send implements Publisher.
func (p *WebhookPublisher) Send(ctx context.Context, payload Payload) error {
	if err := p.checkEnabled(); err != nil {
		return err
	}

	_, err := p.do(ctx, http.MethodPost, p.webhookURL.Value(), payload)
	return err
}

// Status returns the current publisher status. Safe for concurrent use.
func (p *WebhookPublisher) Status() PublisherStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *WebhookPublisher) checkEnabled() error {
	if p.webhookURL.IsEmpty() {
		return ErrDisabled
	}
	p.mu.Lock()
	disabled := p.status.Disabled
	p.mu.Unlock()
	if disabled {
		return ErrDisabled
	}
	return nil
}

// do performs one webhook request and classifies the outcome. Fatal results
// disable the publisher so a misconfigured webhook stops being retried.
func (p *WebhookPublisher) do(ctx context.Context, method, url string, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("Discord request failed", "error", err)
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)

	switch classifyStatus(resp.StatusCode) {
	case sendOK:
		p.logger.Debug("Discord message delivered", "status", resp.StatusCode)
		if readErr != nil {
			return nil, fmt.Errorf("read webhook response: %w", readErr)
		}
		return respBody, nil

	case sendFatal:
		// 4xx (except 429) = configuration error (invalid URL, auth failed).
		// These won't recover with retry, so shut off further sends.
		p.disable(fmt.Sprintf("webhook client error (status %d)", resp.StatusCode))
		p.logger.Error("Discord webhook client error",
			"status", resp.StatusCode,
			"webhook_url", p.webhookURL, // logs as [REDACTED]
		)
		return nil, fmt.Errorf("webhook client error: status %d", resp.StatusCode)

	default:
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			p.logger.Warn("Discord rate limited", "retry_after", retryAfter)
		} else {
			p.logger.Warn("Discord server error", "status", resp.StatusCode)
		}
		return nil, fmt.Errorf("webhook transient error: status %d", resp.StatusCode)
	}
}

func (p *WebhookPublisher) disable(reason string) {
	p.mu.Lock()
	p.status.Disabled = true
	p.status.DisabledReason = reason
	p.status.DisabledAt = time.Now()
	p.mu.Unlock()
}

func classifyStatus(code int) sendResult {
	switch {
	case code >= 200 && code < 300:
		return sendOK
	case code == http.StatusTooManyRequests:
		return sendRetryable
	case code >= 400 && code < 500:
		return sendFatal
	default:
		return sendRetryable
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	// Discord typically sends seconds as an integer
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	// Also try parsing as float (Discord sometimes sends decimals)
	if secs, err := strconv.ParseFloat(header, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}
