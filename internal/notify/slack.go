package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// poster is the part of slack.Client the bot uses.
type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackBot posts with a bot token through the Slack Web API.
type SlackBot struct {
	client  poster
	channel string
}

func NewSlackBot(token, channel string) *SlackBot {
	if channel == "" {
		channel = "#general"
	}
	return &SlackBot{client: slack.New(token), channel: channel}
}

func (s *SlackBot) Name() string { return "slack" }

func (s *SlackBot) Send(ctx context.Context, message string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("failed to post slack message: %w", err)
	}
	return nil
}

// SlackWebhook sends to an incoming webhook.
type SlackWebhook struct {
	WebhookURL string
	Client     *http.Client
}

func NewSlackWebhook(webhookURL string) *SlackWebhook {
	return &SlackWebhook{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackWebhook) Name() string { return "slack" }

func (s *SlackWebhook) Send(ctx context.Context, message string) error {
	msg := slack.WebhookMessage{Text: message}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}
	return postJSON(ctx, s.Client, s.WebhookURL, body, "slack")
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte, provider string) error {
	if url == "" {
		return fmt.Errorf("%s webhook URL is not configured", provider)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s notification failed with status: %s", provider, resp.Status)
	}
	return nil
}
