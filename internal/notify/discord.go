package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DiscordWebhook sends to a Discord channel webhook.
type DiscordWebhook struct {
	WebhookURL string
	Client     *http.Client
}

func NewDiscordWebhook(webhookURL string) *DiscordWebhook {
	return &DiscordWebhook{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordWebhook) Name() string { return "discord" }

func (d *DiscordWebhook) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}
	return postJSON(ctx, d.Client, d.WebhookURL, body, "discord")
}
