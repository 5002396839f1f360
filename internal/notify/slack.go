package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/errors"
)

const defaultSlackAPIURL = "https://slack.com/api/chat.postMessage"

// SlackNotifier posts messages to a Slack channel or user via
// chat.postMessage.
type SlackNotifier struct {
	token   string
	channel string
	apiURL  string
	client  *http.Client
}

// NewSlackNotifier validates the Slack configuration and builds the notifier.
func NewSlackNotifier(cfg config.SlackConfig) (*SlackNotifier, error) {
	if cfg.BotToken == "" {
		return nil, errors.ConfigRequired("notify.slack.bot_token")
	}
	if cfg.Channel == "" {
		return nil, errors.ConfigRequired("notify.slack.channel")
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultSlackAPIURL
	}
	return &SlackNotifier{
		token:   cfg.BotToken,
		channel: cfg.Channel,
		apiURL:  apiURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Name identifies the transport in logs and status output.
func (n *SlackNotifier) Name() string { return "slack" }

// Send posts the message. Slack reports API-level failures inside a 200
// response, so both the HTTP status and the ok flag are checked.
func (n *SlackNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]any{
		"channel": n.channel,
		"text":    msg.Text,
		"mrkdwn":  true,
	})
	if err != nil {
		return errors.NotificationFailed(n.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		return errors.NotificationFailed(n.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.NotificationFailed(n.Name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.NotificationFailed(n.Name(),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.NotificationFailed(n.Name(), fmt.Errorf("decode response: %w", err))
	}
	if !result.OK {
		return errors.NotificationFailed(n.Name(),
			fmt.Errorf("slack API error: %s", result.Error))
	}
	return nil
}
