package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

// Send posts to the webhook's channel; recipient is not used.
func (s *Slack) Send(ctx context.Context, subject, body, _ string) error {
	if s == nil || s.Webhook == "" {
		return fmt.Errorf("slack disabled")
	}
	payload, err := json.Marshal(slackPayload{Text: "*" + subject + "*\n" + body})
	if err != nil {
		return fmt.Errorf("slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack non-2xx: %s", resp.Status)
	}
	return nil
}
