package slack

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
)

func TestWebhookSend(t *testing.T) {
	t.Parallel()

	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)
	}))
	defer srv.Close()

	notification := model.Notification{
		Message:   "External API Error: Could not find API Keys",
		Timestamp: "2024-01-19 19:26:20.022233",
		Context:   []model.ContextEntry{{Label: "Customer ID", Value: "0"}},
	}

	webhook := NewWebhook("oncall", srv.URL, NewDispatcher(time.Second))
	if err := webhook.Send(context.Background(), notification); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got, want := <-bodies, RenderPayload(notification); got != want {
		t.Errorf("body: got %q, want %q", got, want)
	}
}

func TestWebhookSend_EmptyURL(t *testing.T) {
	t.Parallel()

	webhook := NewWebhook("oncall", "", NewDispatcher(time.Second))
	if err := webhook.Send(context.Background(), model.Notification{Message: "boom"}); err == nil {
		t.Fatal("Send: got nil, want error for empty URL")
	}
}

func TestWebhookName(t *testing.T) {
	t.Parallel()

	if got := NewWebhook("oncall", "https://example.com", nil).Name(); got != "oncall" {
		t.Errorf("Name: got %q, want oncall", got)
	}
}
