package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultWebhookTimeout   = 10 * time.Second
	DefaultWebhookRateLimit = 5 // requests per second
)

// WebhookSender POSTs events as JSON to a single URL
type WebhookSender struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
}

// WebhookOption configures the sender
type WebhookOption func(*WebhookSender)

// WithRateLimit sets the maximum deliveries per second
func WithRateLimit(requestsPerSecond int) WebhookOption {
	return func(s *WebhookSender) {
		if requestsPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout. It applies to a copy of the client,
// so a client passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) WebhookOption {
	return func(s *WebhookSender) {
		s.timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(s *WebhookSender) {
		s.httpClient = client
	}
}

// NewWebhookSender creates a sender posting to url
func NewWebhookSender(url string, opts ...WebhookOption) *WebhookSender {
	s := &WebhookSender{
		url: url,
		httpClient: &http.Client{
			Timeout: DefaultWebhookTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultWebhookRateLimit), DefaultWebhookRateLimit),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.timeout > 0 {
		client := *s.httpClient
		client.Timeout = s.timeout
		s.httpClient = &client
	}

	return s
}

func (s *WebhookSender) Send(ctx context.Context, event Event) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Keble-Event", event.Type)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}
