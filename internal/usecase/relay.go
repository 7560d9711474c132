package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
	"github.com/antonio-hickey/dev-notify/internal/metrics"
)

// Relay fans a notification out to every configured destination. Delivery is
// sequential and paced by the optional limiter; webhook endpoints throttle
// callers that burst.
type Relay struct {
	notifiers []ports.Notifier
	limiter   *rate.Limiter
	logger    ports.Logger
	metrics   *metrics.Metrics

	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewRelay constructs a Relay over the given destinations. Nil notifiers are
// dropped; a nil limiter disables pacing.
func NewRelay(notifiers []ports.Notifier, limiter *rate.Limiter, logger ports.Logger, m *metrics.Metrics) *Relay {
	active := make([]ports.Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &Relay{
		notifiers: active,
		limiter:   limiter,
		logger:    logger,
		metrics:   m,
	}
}

// Dispatch delivers the notification to each destination in turn. Per-target
// failures are logged and counted; the first error is returned only after
// every destination was attempted, so one bad webhook never starves the rest.
func (r *Relay) Dispatch(ctx context.Context, notification model.Notification) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("pace dispatch: %w", err)
		}
	}

	var firstErr error
	for _, notifier := range r.notifiers {
		start := time.Now()
		err := notifier.Send(ctx, notification)
		r.metrics.RecordDelivery(time.Since(start), err)

		if err != nil {
			r.failed.Add(1)
			if firstErr == nil {
				firstErr = err
			}
			r.logger.Error(ctx, "delivery failed", "destination", notifier.Name(), "error", err)
			continue
		}

		r.delivered.Add(1)
		r.logger.Info(ctx, "notification delivered", "destination", notifier.Name(), "duration", time.Since(start))
	}

	return firstErr
}

// Delivered reports the number of successful deliveries since startup.
func (r *Relay) Delivered() uint64 {
	return r.delivered.Load()
}

// Failed reports the number of failed deliveries since startup.
func (r *Relay) Failed() uint64 {
	return r.failed.Load()
}
