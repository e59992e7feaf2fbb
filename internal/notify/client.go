// Package notify delivers business events to the workflow-automation
// service through its named webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Webhook names a workflow endpoint under <base>/webhook/.
type Webhook string

const (
	WorkOrderCreated   Webhook = "work-order-created"
	WorkOrderUpdated   Webhook = "work-order-updated"
	WorkOrderCompleted Webhook = "work-order-completed"
)

const (
	source    = "cabot-property-management"
	userAgent = "Cabot-Property-Management/1.0"

	maxErrorBody = 512
)

// Client posts JSON payloads to the automation service.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	now     func() time.Time
}

// NewClient builds a client for baseURL. A nil httpClient gets one with the
// given timeout.
func NewClient(baseURL, secret string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    httpClient,
		now:     time.Now,
	}
}

// URL returns the endpoint for a webhook.
func (c *Client) URL(webhook Webhook) string {
	return c.baseURL + "/webhook/" + string(webhook)
}

// Post sends data to the webhook, adding timestamp, source and the shared
// secret. Any non-2xx response is an error.
func (c *Client) Post(ctx context.Context, webhook Webhook, data map[string]any) error {
	if c.baseURL == "" {
		return fmt.Errorf("notify: base URL is empty")
	}
	payload := make(map[string]any, len(data)+3)
	for k, v := range data {
		payload[k] = v
	}
	payload["timestamp"] = c.now().UTC().Format(time.RFC3339Nano)
	payload["source"] = source
	payload["secret"] = c.secret

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode %s payload: %w", webhook, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(webhook), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build %s request: %w", webhook, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post %s: %w", webhook, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("notify: %s returned %s: %s", webhook, resp.Status, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
