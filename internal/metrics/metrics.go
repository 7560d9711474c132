package metrics

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus collectors for the notifier.
type Metrics struct {
	DeliveriesTotal       prometheus.Counter
	DeliveredTotal        prometheus.Counter
	DeliveryFailuresTotal prometheus.Counter
	DeliveryDurationSecs  prometheus.Histogram
	FeedRecordsTotal      prometheus.Counter
	FeedParseErrorsTotal  prometheus.Counter
	HeartbeatsTotal       prometheus.Counter
	LastDeliveryTimestamp prometheus.Gauge
	LastRunStatus         prometheus.Gauge // 0 = unknown, 1 = success, 2 = failure

	registry *prometheus.Registry
	pusher   *push.Pusher
}

// New creates a Metrics instance backed by a private registry. When both
// pushgatewayURL and jobName are set, Push sends the registry there grouped
// by instance hostname. All methods are safe on a nil receiver so the
// one-shot CLI can run without metrics.
func New(pushgatewayURL, jobName string) *Metrics {
	m := &Metrics{
		DeliveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dev_notify_deliveries_total",
			Help: "Total number of webhook delivery attempts",
		}),
		DeliveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dev_notify_delivered_total",
			Help: "Total number of successful webhook deliveries",
		}),
		DeliveryFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dev_notify_delivery_failures_total",
			Help: "Total number of webhook deliveries that failed in transport",
		}),
		DeliveryDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dev_notify_delivery_duration_seconds",
			Help:    "Duration of webhook delivery attempts in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		FeedRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dev_notify_feed_records_total",
			Help: "Total number of notifications decoded from the feed",
		}),
		FeedParseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dev_notify_feed_parse_errors_total",
			Help: "Total number of feed lines skipped as malformed",
		}),
		HeartbeatsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dev_notify_heartbeats_total",
			Help: "Total number of heartbeat notifications dispatched",
		}),
		LastDeliveryTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dev_notify_last_delivery_timestamp_seconds",
			Help: "Unix timestamp of the last successful delivery",
		}),
		LastRunStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dev_notify_last_run_status",
			Help: "Last delivery status: 0=unknown, 1=success, 2=failure",
		}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.DeliveriesTotal,
		m.DeliveredTotal,
		m.DeliveryFailuresTotal,
		m.DeliveryDurationSecs,
		m.FeedRecordsTotal,
		m.FeedParseErrorsTotal,
		m.HeartbeatsTotal,
		m.LastDeliveryTimestamp,
		m.LastRunStatus,
	)

	if pushgatewayURL != "" && jobName != "" {
		m.pusher = push.New(pushgatewayURL, jobName).Gatherer(m.registry)
		if hostname, err := os.Hostname(); err == nil && hostname != "" {
			m.pusher = m.pusher.Grouping("instance", hostname)
		}
	}

	return m
}

// RecordDelivery records one delivery attempt and its outcome.
func (m *Metrics) RecordDelivery(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.Inc()
	m.DeliveryDurationSecs.Observe(duration.Seconds())
	if err != nil {
		m.DeliveryFailuresTotal.Inc()
		m.LastRunStatus.Set(2)
		return
	}
	m.DeliveredTotal.Inc()
	m.LastDeliveryTimestamp.SetToCurrentTime()
	m.LastRunStatus.Set(1)
}

// RecordFeedRecord records one notification decoded from the feed.
func (m *Metrics) RecordFeedRecord() {
	if m == nil {
		return
	}
	m.FeedRecordsTotal.Inc()
}

// RecordFeedParseError records one malformed feed line.
func (m *Metrics) RecordFeedParseError() {
	if m == nil {
		return
	}
	m.FeedParseErrorsTotal.Inc()
}

// RecordHeartbeat records one dispatched heartbeat.
func (m *Metrics) RecordHeartbeat() {
	if m == nil {
		return
	}
	m.HeartbeatsTotal.Inc()
}

// Push sends the metrics to the Pushgateway, if one is configured.
func (m *Metrics) Push(ctx context.Context) error {
	if m == nil || m.pusher == nil {
		return nil
	}
	if err := m.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
