package app

import (
	"context"
	"errors"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
	"github.com/antonio-hickey/dev-notify/internal/metrics"
	"github.com/antonio-hickey/dev-notify/internal/usecase"
)

// App manages the daemon lifecycle: the heartbeat schedule and the feed
// consumer.
type App struct {
	cron      *cron.Cron
	relay     *usecase.Relay
	heartbeat *usecase.Heartbeat
	source    ports.Source
	logger    ports.Logger
	metrics   *metrics.Metrics
	schedule  string
}

// New constructs an App instance. A nil source disables the feed consumer;
// the daemon then only emits heartbeats.
func New(relay *usecase.Relay, heartbeat *usecase.Heartbeat, source ports.Source, logger ports.Logger, m *metrics.Metrics, schedule string) *App {
	return &App{
		cron:      cron.New(),
		relay:     relay,
		heartbeat: heartbeat,
		source:    source,
		logger:    logger,
		metrics:   m,
		schedule:  schedule,
	}
}

// Run sends a startup heartbeat, starts the heartbeat schedule and the feed
// consumer, then blocks until ctx is cancelled. Shutdown waits for a running
// heartbeat job to finish, bounded by a grace window.
func (a *App) Run(ctx context.Context) error {
	if err := a.scheduleHeartbeat(); err != nil {
		return err
	}

	a.logger.Info(ctx, "sending startup heartbeat")
	if err := a.heartbeat.Run(ctx); err != nil {
		a.logger.Error(ctx, "startup heartbeat failed", "error", err)
	}

	a.logger.Info(ctx, "starting scheduler", "cron", a.schedule)
	a.cron.Start()

	consumerDone := a.startConsumer(ctx)

	// No-op outside systemd.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	<-consumerDone

	a.pushFinalMetrics()
	a.logger.Info(context.Background(), "daemon stopped")
	return nil
}

func (a *App) scheduleHeartbeat() error {
	_, err := a.cron.AddFunc(a.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := a.heartbeat.Run(ctx); err != nil {
			a.logger.Error(ctx, "scheduled heartbeat failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	return nil
}

// startConsumer follows the feed and relays every emitted notification. The
// returned channel closes once the consumer has drained out after ctx ends.
func (a *App) startConsumer(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if a.source == nil {
		a.logger.Info(ctx, "no feed configured, heartbeats only")
		close(done)
		return done
	}

	out := make(chan model.Notification, 16)
	go func() {
		if err := a.source.Follow(ctx, out); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error(ctx, "feed follower stopped", "error", err)
		}
	}()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case notification := <-out:
				if err := a.relay.Dispatch(ctx, notification); err != nil {
					a.logger.Error(ctx, "feed dispatch failed", "error", err)
				}
			}
		}
	}()

	return done
}

func (a *App) pushFinalMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.metrics.Push(ctx); err != nil {
		a.logger.Error(ctx, "final metrics push failed", "error", err)
	}
}
