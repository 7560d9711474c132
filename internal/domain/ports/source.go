package ports

import (
	"context"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
)

// Source streams notifications from an external feed. Follow blocks until
// ctx is cancelled or the feed fails, emitting decoded notifications on out.
type Source interface {
	Follow(ctx context.Context, out chan<- model.Notification) error
}
