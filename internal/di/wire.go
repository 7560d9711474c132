//go:build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"golang.org/x/time/rate"

	"github.com/antonio-hickey/dev-notify/internal/adapter/feed"
	"github.com/antonio-hickey/dev-notify/internal/adapter/logging"
	"github.com/antonio-hickey/dev-notify/internal/adapter/slack"
	"github.com/antonio-hickey/dev-notify/internal/app"
	"github.com/antonio-hickey/dev-notify/internal/config"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
	"github.com/antonio-hickey/dev-notify/internal/metrics"
	"github.com/antonio-hickey/dev-notify/internal/usecase"
)

// InitializeApp wires the daemon components together. configPath may be
// empty for environment-only configuration.
func InitializeApp(configPath string) (*app.App, error) {
	wire.Build(
		config.Load,
		provideLogger,
		provideMetrics,
		provideDispatcher,
		provideNotifiers,
		provideLimiter,
		usecase.NewRelay,
		usecase.NewHeartbeat,
		provideSource,
		provideApp,
	)
	return nil, nil
}

func provideLogger(cfg *config.Config) ports.Logger {
	return logging.ForFormat(cfg.LogFormat, cfg.LogLevel)
}

func provideMetrics(cfg *config.Config) *metrics.Metrics {
	return metrics.New(cfg.PushgatewayURL, cfg.PushJobName)
}

func provideDispatcher(cfg *config.Config) *slack.Dispatcher {
	return slack.NewDispatcher(cfg.RequestTimeout)
}

func provideNotifiers(cfg *config.Config, dispatcher *slack.Dispatcher, logger ports.Logger) ([]ports.Notifier, error) {
	resolved, skipped, err := cfg.ResolveDestinations()
	if err != nil {
		return nil, err
	}
	for _, name := range skipped {
		logger.Error(context.Background(), "skipping destination with unresolved url_env", "destination", name)
	}

	notifiers := make([]ports.Notifier, 0, len(resolved))
	for _, d := range resolved {
		notifiers = append(notifiers, slack.NewWebhook(d.Name, d.URL, dispatcher))
	}
	return notifiers, nil
}

func provideLimiter(cfg *config.Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst)
}

func provideSource(cfg *config.Config, logger ports.Logger, m *metrics.Metrics) ports.Source {
	if cfg.FeedPath == "" {
		return nil
	}
	return feed.NewFollower(cfg.FeedPath, cfg.StripHTML, logger, m)
}

func provideApp(relay *usecase.Relay, heartbeat *usecase.Heartbeat, source ports.Source, logger ports.Logger, m *metrics.Metrics, cfg *config.Config) *app.App {
	return app.New(relay, heartbeat, source, logger, m, cfg.HeartbeatCron)
}
