package slack

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDispatcherPost_DeliversVerbatim(t *testing.T) {
	t.Parallel()

	type capture struct {
		method      string
		contentType string
		body        string
	}
	captured := make(chan capture, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured <- capture{method: r.Method, contentType: r.Header.Get("Content-Type"), body: string(body)}
	}))
	defer srv.Close()

	payload := "{\"blocks\":[{\"text\":{\"text\":\"`Issue`: boom\\n\",\"type\":\"mrkdwn\"},\"type\":\"section\"}]}"
	if err := NewDispatcher(time.Second).Post(context.Background(), payload, srv.URL); err != nil {
		t.Fatalf("Post: %v", err)
	}

	got := <-captured
	if got.method != http.MethodPost {
		t.Errorf("method: got %q, want POST", got.method)
	}
	if got.contentType != "application/json" {
		t.Errorf("content type: got %q, want application/json", got.contentType)
	}
	if got.body != payload {
		t.Errorf("body: got %q, want %q", got.body, payload)
	}
	select {
	case extra := <-captured:
		t.Fatalf("unexpected second request: %+v", extra)
	default:
	}
}

func TestDispatcherPost_AnyStatusIsSuccess(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		err := NewDispatcher(time.Second).Post(context.Background(), "{}", srv.URL)
		srv.Close()

		if err != nil {
			t.Errorf("status %d: got error %v, want success", status, err)
		}
	}
}

func TestDispatcherPost_RefusedConnection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	destination := srv.URL + "/T0000/B0000/supersecret"
	srv.Close()

	err := NewDispatcher(time.Second).Post(context.Background(), "{}", destination)
	if err == nil {
		t.Fatal("Post: got nil, want transport error")
	}

	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("got %T, want *DeliveryError", err)
	}
	if derr.Destination != srv.URL {
		t.Errorf("destination: got %q, want %q", derr.Destination, srv.URL)
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Errorf("error leaks webhook path: %v", err)
	}
}

func TestDispatcherPost_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := NewDispatcher(0).Post(ctx, "{}", srv.URL)
	if err == nil {
		t.Fatal("Post: got nil, want cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled in chain", err)
	}
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Errorf("got %T, want *DeliveryError", err)
	}
}

func TestDispatcherPost_MalformedDestination(t *testing.T) {
	t.Parallel()

	err := NewDispatcher(time.Second).Post(context.Background(), "{}", "://nowhere")
	if err == nil {
		t.Fatal("Post: got nil, want error for malformed destination")
	}
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("got %T, want *DeliveryError", err)
	}
	if derr.Destination != "unknown" {
		t.Errorf("destination: got %q, want unknown", derr.Destination)
	}
}

func TestRedactDestination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		destination string
		want        string
	}{
		{"https://hooks.slack.com/services/T0000/B0000/secret", "https://hooks.slack.com"},
		{"http://localhost:8080/hook", "http://localhost:8080"},
		{"https://hooks.slack.com", "https://hooks.slack.com"},
		{"", "unknown"},
		{"not a url", "unknown"},
		{"https://", "unknown"},
	}

	for _, tt := range tests {
		if got := redactDestination(tt.destination); got != tt.want {
			t.Errorf("redactDestination(%q): got %q, want %q", tt.destination, got, tt.want)
		}
	}
}
