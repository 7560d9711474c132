package ports

import (
	"context"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
)

// Notifier sends notifications to one downstream destination (e.g. a Slack
// webhook). Name identifies the destination in logs and metrics.
type Notifier interface {
	Name() string
	Send(ctx context.Context, notification model.Notification) error
}
