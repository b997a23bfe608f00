// Package alert forwards internal failures to a Slack incoming webhook.
// Delivery is best-effort and never sits on a request's critical path.
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pillme-team/pillme-server/pkg/logger"
)

var (
	webhookURL string
	client     = &http.Client{Timeout: 5 * time.Second}
)

func Configure(url string) {
	webhookURL = url
}

type payload struct {
	Text string `json:"text"`
}

// Notify posts text to the configured webhook. A missing webhook is not
// an error, alerting is optional.
func Notify(text string) error {
	if webhookURL == "" {
		return nil
	}
	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return fmt.Errorf("encode alert payload: %w", err)
	}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Go sends the alert from a goroutine so callers never block on Slack.
func Go(text string) {
	go func() {
		if err := Notify(text); err != nil {
			logger.Error("failed to deliver alert", "error", err)
		}
	}()
}
