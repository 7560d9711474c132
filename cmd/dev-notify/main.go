package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/antonio-hickey/dev-notify/internal/adapter/logging"
	"github.com/antonio-hickey/dev-notify/internal/adapter/slack"
	"github.com/antonio-hickey/dev-notify/internal/config"
	"github.com/antonio-hickey/dev-notify/internal/domain/model"
)

const timestampLayout = "2006-01-02 15:04:05.000000"

// contextFlags collects repeatable -context Label=Value flags in order.
type contextFlags []model.ContextEntry

func (c *contextFlags) String() string {
	parts := make([]string, 0, len(*c))
	for _, entry := range *c {
		parts = append(parts, entry.Label+"="+entry.Value)
	}
	return strings.Join(parts, ",")
}

func (c *contextFlags) Set(raw string) error {
	label, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("expected Label=Value, got %q", raw)
	}
	*c = append(*c, model.ContextEntry{Label: label, Value: value})
	return nil
}

type options struct {
	url       string
	file      string
	message   string
	timestamp string
	context   contextFlags
	dryRun    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.url, "url", "", "webhook destination URL (default: DEV_NOTIFY_WEBHOOK_URL)")
	flag.StringVar(&opts.file, "file", "", "read the notification as JSON from this file instead of stdin")
	flag.StringVar(&opts.message, "message", "", "build the notification from flags with this message")
	flag.StringVar(&opts.timestamp, "timestamp", "", "timestamp used with -message (default: current time)")
	flag.Var(&opts.context, "context", "context entry as Label=Value, repeatable, order preserved")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "print the payload instead of posting it")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "dev-notify: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	notification, err := buildNotification(opts)
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Println(slack.RenderPayload(notification))
		return nil
	}

	destination := opts.url
	if destination == "" {
		destination = cfg.WebhookURL
	}
	if destination == "" {
		return fmt.Errorf("no destination: pass -url or set DEV_NOTIFY_WEBHOOK_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.ForFormat(cfg.LogFormat, cfg.LogLevel)
	webhook := slack.NewWebhook(cfg.WebhookName, destination, slack.NewDispatcher(cfg.RequestTimeout))

	start := time.Now()
	if err := webhook.Send(ctx, notification); err != nil {
		return err
	}

	logger.Info(ctx, "notification delivered", "destination", webhook.Name(), "duration", time.Since(start))
	return nil
}

// buildNotification assembles the notification from flags when -message is
// given, otherwise decodes one JSON object from -file or stdin.
func buildNotification(opts options) (model.Notification, error) {
	if opts.message != "" {
		timestamp := opts.timestamp
		if timestamp == "" {
			timestamp = time.Now().Format(timestampLayout)
		}
		return model.Notification{
			Message:   opts.message,
			Timestamp: timestamp,
			Context:   opts.context,
		}, nil
	}

	var reader io.Reader = os.Stdin
	if opts.file != "" {
		file, err := os.Open(opts.file)
		if err != nil {
			return model.Notification{}, fmt.Errorf("open notification file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var notification model.Notification
	if err := json.NewDecoder(reader).Decode(&notification); err != nil {
		return model.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	return notification, nil
}
