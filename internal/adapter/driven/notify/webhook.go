// Package notify implements the NotificationDispatcher port by posting
// JSON payloads to a configured webhook endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NotificationDispatcher = (*WebhookDispatcher)(nil)

// webhookHTTPClient is the HTTP client used for webhook deliveries.
// It enforces a 10-second timeout as a safety net alongside context
// cancellation.
var webhookHTTPClient = &http.Client{Timeout: 10 * time.Second}

// WebhookDispatcher delivers follower notifications as a single JSON POST
// per event. An empty endpoint disables delivery entirely.
type WebhookDispatcher struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewWebhookDispatcher creates a dispatcher posting to endpoint. If
// endpoint is empty the dispatcher is a no-op.
func NewWebhookDispatcher(endpoint string, logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		endpoint: endpoint,
		client:   webhookHTTPClient,
		logger:   logger,
	}
}

// NewWebhookDispatcherWithClient creates a dispatcher with a custom
// http.Client. This constructor is intended for testing, allowing
// injection of an httptest server.
func NewWebhookDispatcherWithClient(endpoint string, client *http.Client, logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// webhookPayload is the JSON body posted to the webhook endpoint.
type webhookPayload struct {
	ItemTypeID        int64   `json:"item_type_id"`
	ItemID            int64   `json:"item_id"`
	NoteID            int64   `json:"note_id"`
	FollowerPersonIDs []int64 `json:"follower_person_ids"`
}

// NotifyFollowers posts the notification to the webhook endpoint. Events
// with no followers and dispatchers without an endpoint are skipped. A
// non-2xx response is reported as an error; the caller decides whether
// that is fatal.
func (d *WebhookDispatcher) NotifyFollowers(ctx context.Context, n driven.Notification) error {
	if d.endpoint == "" || len(n.FollowerPersonIDs) == 0 {
		return nil
	}

	body, err := json.Marshal(webhookPayload{
		ItemTypeID:        n.ItemTypeID,
		ItemID:            n.ItemID,
		NoteID:            n.NoteID,
		FollowerPersonIDs: n.FollowerPersonIDs,
	})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	d.logger.Debug("notified followers",
		"note_id", n.NoteID,
		"followers", len(n.FollowerPersonIDs))
	return nil
}
