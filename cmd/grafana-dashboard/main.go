package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

func main() {
	builder := dashboard.NewDashboardBuilder("Dev Notify").
		Uid("dev-notify").
		Tags([]string{"dev-notify", "notifier", "prometheus"}).
		Refresh("1m").
		Time("now-6h", "now").
		Timezone(common.TimeZoneBrowser)

	builder = builder.WithRow(dashboard.NewRowBuilder("Deliveries"))
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Delivery rate").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(dev_notify_delivered_total[5m]))`).
					LegendFormat("delivered"),
			).
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(dev_notify_delivery_failures_total[5m]))`).
					LegendFormat("failed"),
			),
	)
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Delivery duration avg").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(dev_notify_delivery_duration_seconds_sum[5m])) / sum(rate(dev_notify_delivery_duration_seconds_count[5m]))`).
					LegendFormat("avg"),
			),
	)

	builder = builder.WithRow(dashboard.NewRowBuilder("Feed"))
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Feed records").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(dev_notify_feed_records_total[5m]))`).
					LegendFormat("decoded"),
			).
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(dev_notify_feed_parse_errors_total[5m]))`).
					LegendFormat("malformed"),
			),
	)

	builder = builder.WithRow(dashboard.NewRowBuilder("Liveness"))
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Heartbeats").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(dev_notify_heartbeats_total[5m]))`).
					LegendFormat("heartbeats"),
			),
	)
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Seconds since last delivery").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`time() - dev_notify_last_delivery_timestamp_seconds`).
					LegendFormat("age"),
			),
	)
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Last run status").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`dev_notify_last_run_status`).
					LegendFormat("status"),
			),
	)

	dashboardJSON, err := builder.Build()
	if err != nil {
		panic(err)
	}

	outputPath := os.Getenv("DASHBOARD_OUT")
	if outputPath == "" {
		outputPath = "dashboard.json"
	}

	payload, err := json.MarshalIndent(dashboardJSON, "", "  ")
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile(outputPath, payload, 0o600); err != nil {
		panic(err)
	}

	fmt.Printf("dashboard written to %s\n", outputPath)
}
