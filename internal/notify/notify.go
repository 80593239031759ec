// Package notify posts run results to an incoming-webhook endpoint.
//
// Notification is strictly best effort: a missing webhook URL disables it,
// and a failed POST never changes the outcome of the run that triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// EnvWebhookURL names the environment variable carrying the webhook
// endpoint. Unset means notification is disabled.
const EnvWebhookURL = "CTXSYNC_WEBHOOK_URL"

// HTTPDoer defines the HTTP operations required by Notifier.
// This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// message is the webhook payload.
type message struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Notifier posts one-line run summaries to a webhook.
type Notifier struct {
	url     string
	channel string
	client  HTTPDoer
}

// New creates a notifier for the given webhook URL and channel. An empty
// URL yields a disabled notifier.
func New(url, channel string) *Notifier {
	return &Notifier{
		url:     url,
		channel: channel,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewFromEnv reads the webhook URL from the environment.
func NewFromEnv(channel string) *Notifier {
	return New(os.Getenv(EnvWebhookURL), channel)
}

// WithClient overrides the HTTP client. Returns the notifier for chaining.
func (n *Notifier) WithClient(client HTTPDoer) *Notifier {
	n.client = client
	return n
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Send posts text to the webhook. Returns the delivery error for optional
// logging; callers must not let it affect their own exit status.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(message{Channel: n.channel, Text: text})
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
