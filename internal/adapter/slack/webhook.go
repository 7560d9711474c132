package slack

import (
	"context"
	"fmt"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
)

// Webhook is a notifier bound to one Slack-compatible webhook destination.
type Webhook struct {
	name        string
	destination string
	dispatcher  *Dispatcher
}

var _ ports.Notifier = (*Webhook)(nil)

// NewWebhook creates a webhook notifier. The dispatcher may be shared with
// other webhooks so they reuse one HTTP client.
func NewWebhook(name, destination string, dispatcher *Dispatcher) *Webhook {
	return &Webhook{
		name:        name,
		destination: destination,
		dispatcher:  dispatcher,
	}
}

// Name identifies this destination in logs and metrics.
func (w *Webhook) Name() string {
	return w.name
}

// Send renders the notification and posts it to the destination. Failures
// surface to the caller untouched; retry and alerting policy live there.
func (w *Webhook) Send(ctx context.Context, notification model.Notification) error {
	if w.destination == "" {
		return fmt.Errorf("webhook URL is empty")
	}
	return w.dispatcher.Post(ctx, RenderPayload(notification), w.destination)
}
