package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
	"github.com/antonio-hickey/dev-notify/internal/metrics"
)

type noopLogger struct{}

func (noopLogger) Info(context.Context, string, ...any)  {}
func (noopLogger) Error(context.Context, string, ...any) {}

// fakeNotifier records every notification it receives and fails with err
// when set. Dispatch is sequential so no locking is needed.
type fakeNotifier struct {
	name     string
	err      error
	received []model.Notification
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(_ context.Context, n model.Notification) error {
	f.received = append(f.received, n)
	return f.err
}

func sampleNotification() model.Notification {
	return model.Notification{
		Message:   "External API Error: Could not find API Keys",
		Timestamp: "2024-01-19 19:26:20.022233",
		Context:   []model.ContextEntry{{Label: "Customer ID", Value: "0"}},
	}
}

func TestRelayDispatch_FansOutToAllDestinations(t *testing.T) {
	t.Parallel()

	first := &fakeNotifier{name: "oncall"}
	second := &fakeNotifier{name: "audit"}
	relay := NewRelay([]ports.Notifier{first, second}, nil, noopLogger{}, nil)

	notification := sampleNotification()
	if err := relay.Dispatch(context.Background(), notification); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	for _, target := range []*fakeNotifier{first, second} {
		if len(target.received) != 1 {
			t.Fatalf("%s: got %d sends, want 1", target.name, len(target.received))
		}
		if target.received[0].Message != notification.Message {
			t.Errorf("%s: got message %q", target.name, target.received[0].Message)
		}
		if len(target.received[0].Context) != 1 || target.received[0].Context[0].Label != "Customer ID" {
			t.Errorf("%s: context entries reordered or lost: %+v", target.name, target.received[0].Context)
		}
	}

	if got := relay.Delivered(); got != 2 {
		t.Errorf("Delivered: got %d, want 2", got)
	}
	if got := relay.Failed(); got != 0 {
		t.Errorf("Failed: got %d, want 0", got)
	}
}

func TestRelayDispatch_FirstErrorAfterAllAttempted(t *testing.T) {
	t.Parallel()

	errOncall := errors.New("connection refused")
	errAudit := errors.New("no such host")
	oncall := &fakeNotifier{name: "oncall", err: errOncall}
	healthy := &fakeNotifier{name: "healthy"}
	audit := &fakeNotifier{name: "audit", err: errAudit}
	relay := NewRelay([]ports.Notifier{oncall, healthy, audit}, nil, noopLogger{}, nil)

	err := relay.Dispatch(context.Background(), sampleNotification())
	if !errors.Is(err, errOncall) {
		t.Errorf("Dispatch: got %v, want first error %v", err, errOncall)
	}

	for _, target := range []*fakeNotifier{oncall, healthy, audit} {
		if len(target.received) != 1 {
			t.Errorf("%s: got %d sends, want 1 (every destination must be attempted)", target.name, len(target.received))
		}
	}

	if got := relay.Delivered(); got != 1 {
		t.Errorf("Delivered: got %d, want 1", got)
	}
	if got := relay.Failed(); got != 2 {
		t.Errorf("Failed: got %d, want 2", got)
	}
}

func TestRelayDispatch_NilNotifiersDropped(t *testing.T) {
	t.Parallel()

	target := &fakeNotifier{name: "oncall"}
	relay := NewRelay([]ports.Notifier{nil, target, nil}, nil, noopLogger{}, nil)

	if err := relay.Dispatch(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(target.received) != 1 {
		t.Errorf("got %d sends, want 1", len(target.received))
	}
}

func TestRelayDispatch_NoDestinations(t *testing.T) {
	t.Parallel()

	relay := NewRelay(nil, nil, noopLogger{}, nil)
	if err := relay.Dispatch(context.Background(), sampleNotification()); err != nil {
		t.Errorf("Dispatch with no destinations: got %v, want nil", err)
	}
}

func TestRelayDispatch_PacingHonoursCancellation(t *testing.T) {
	t.Parallel()

	target := &fakeNotifier{name: "oncall"}
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	relay := NewRelay([]ports.Notifier{target}, limiter, noopLogger{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := relay.Dispatch(ctx, sampleNotification())
	if err == nil {
		t.Fatal("Dispatch: got nil, want pacing error on cancelled context")
	}
	if len(target.received) != 0 {
		t.Errorf("got %d sends, want 0 when pacing is cancelled", len(target.received))
	}
}

func TestRelayDispatch_WithLimiterDelivers(t *testing.T) {
	t.Parallel()

	target := &fakeNotifier{name: "oncall"}
	limiter := rate.NewLimiter(rate.Limit(100), 10)
	relay := NewRelay([]ports.Notifier{target}, limiter, noopLogger{}, nil)

	for i := 0; i < 3; i++ {
		if err := relay.Dispatch(context.Background(), sampleNotification()); err != nil {
			t.Fatalf("Dispatch %d: %v", i, err)
		}
	}
	if len(target.received) != 3 {
		t.Errorf("got %d sends, want 3", len(target.received))
	}
}

func TestRelayDispatch_RecordsMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New("", "")
	relay := NewRelay([]ports.Notifier{
		&fakeNotifier{name: "healthy"},
		&fakeNotifier{name: "broken", err: errors.New("connection refused")},
	}, nil, noopLogger{}, m)

	_ = relay.Dispatch(context.Background(), sampleNotification())

	if got := testutil.ToFloat64(m.DeliveriesTotal); got != 2 {
		t.Errorf("deliveries: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DeliveredTotal); got != 1 {
		t.Errorf("delivered: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DeliveryFailuresTotal); got != 1 {
		t.Errorf("failures: got %v, want 1", got)
	}
}
