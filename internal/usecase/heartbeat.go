package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
	"github.com/antonio-hickey/dev-notify/internal/metrics"
)

// timestampLayout matches the microsecond timestamps the feed producers emit.
const timestampLayout = "2006-01-02 15:04:05.000000"

// Heartbeat reports that the notifier itself is alive by dispatching a small
// status notification through the relay, with the delivery counters attached
// as context entries. A silent notifier and a dead one look the same from
// the chat channel; the heartbeat tells them apart.
type Heartbeat struct {
	relay   *Relay
	logger  ports.Logger
	metrics *metrics.Metrics

	startedAt time.Time
	now       func() time.Time
}

// NewHeartbeat constructs a Heartbeat bound to the relay it reports through.
func NewHeartbeat(relay *Relay, logger ports.Logger, m *metrics.Metrics) *Heartbeat {
	return &Heartbeat{
		relay:     relay,
		logger:    logger,
		metrics:   m,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Run dispatches one liveness notification.
func (h *Heartbeat) Run(ctx context.Context) error {
	if err := h.relay.Dispatch(ctx, h.build()); err != nil {
		h.logger.Error(ctx, "heartbeat dispatch failed", "error", err)
		return err
	}

	h.metrics.RecordHeartbeat()
	h.logger.Info(ctx, "heartbeat dispatched")
	return nil
}

func (h *Heartbeat) build() model.Notification {
	now := h.now()
	return model.Notification{
		Message:   "Heartbeat: dev-notify is alive",
		Timestamp: now.Format(timestampLayout),
		Context: []model.ContextEntry{
			{Label: "Uptime", Value: now.Sub(h.startedAt).Truncate(time.Second).String()},
			{Label: "Delivered", Value: strconv.FormatUint(h.relay.Delivered(), 10)},
			{Label: "Failed", Value: strconv.FormatUint(h.relay.Failed(), 10)},
		},
	}
}
