package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// WebhookSender delivers notifications as a JSON POST to an arbitrary
// webhook URL. The payload shape matches what Discord and Slack-compatible
// incoming webhooks accept, so position open/close alerts can land directly
// in a trading channel.
type WebhookSender struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookSender creates a WebhookSender for the given URL. It uses a
// default HTTP client with a 10-second timeout.
func NewWebhookSender(webhookURL string) *WebhookSender {
	return &WebhookSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the notification to the webhook. The title is rendered in bold
// markdown above the message body.
func (w *WebhookSender) Send(ctx context.Context, title, message string) error {
	payload := map[string]string{
		"content": fmt.Sprintf("**%s**\n%s", title, message),
	}
	if err := postJSON(ctx, w.client, w.webhookURL, payload); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// Name returns the sender identifier.
func (w *WebhookSender) Name() string {
	return "webhook"
}
