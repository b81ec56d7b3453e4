// Package feedback relays user feedback to an external collector.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/blizx/zenith/internal/platform/timeouts"
)

// Relay posts feedback messages to a configured endpoint. Delivery is
// best-effort; the caller keeps the form contents on failure so the user
// can retry.
type Relay struct {
	url    string
	client *http.Client
}

// New creates a relay for the given collector URL. A nil client falls back
// to a default with the standard request timeout.
func New(url string, client *http.Client) *Relay {
	if client == nil {
		client = &http.Client{Timeout: timeouts.GatewayRequest}
	}
	return &Relay{url: url, client: client}
}

type message struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Send delivers one feedback message. Any non-2xx response is an error.
func (r *Relay) Send(ctx context.Context, email, text string) error {
	body, err := json.Marshal(message{Email: email, Message: text})
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build feedback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send feedback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send feedback: unexpected status %d", resp.StatusCode)
	}
	return nil
}
