package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeliveryError reports a transport failure while posting a payload. The
// destination is redacted to scheme and host; webhook paths carry secrets.
type DeliveryError struct {
	Destination string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Dispatcher posts rendered payloads to webhook destinations. Its HTTP
// client is safe to share across destinations and concurrent sends.
type Dispatcher struct {
	httpClient *http.Client
}

// NewDispatcher creates a Dispatcher whose requests time out after the given
// duration. A zero timeout leaves requests bounded only by their context.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Post sends the payload verbatim to the destination in a single HTTP POST.
// Any response status counts as delivered; only transport failures (DNS,
// refused connection, TLS, timeout, cancelled context, malformed URL) return
// an error, always a *DeliveryError. Nothing is retried or queued.
func (d *Dispatcher) Post(ctx context.Context, payload, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination, strings.NewReader(payload))
	if err != nil {
		return &DeliveryError{
			Destination: redactDestination(destination),
			Err:         fmt.Errorf("create request: %w", scrubURL(err, destination)),
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{
			Destination: redactDestination(destination),
			Err:         fmt.Errorf("perform request: %w", scrubURL(err, destination)),
		}
	}
	defer resp.Body.Close()

	return nil
}

// scrubURL rewrites the full destination inside a transport error to its
// redacted form; url.Error quotes the whole URL in its message.
func scrubURL(err error, destination string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = redactDestination(destination)
	}
	return err
}

func redactDestination(destination string) string {
	if strings.HasPrefix(destination, "https://") || strings.HasPrefix(destination, "http://") {
		parts := strings.Split(destination, "/")
		if len(parts) >= 3 && parts[2] != "" {
			return parts[0] + "//" + parts[2]
		}
	}
	return "unknown"
}
