package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultAPIBase is the public Telegram Bot API endpoint
const DefaultAPIBase = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client. The bot token is supplied
// per call because every configured channel carries its own credential.
type Client struct {
	apiBase    string
	parseMode  string
	httpClient *http.Client
}

// NewClient creates a telegram client. apiBase falls back to the public
// endpoint when empty; parseMode falls back to HTML.
func NewClient(apiBase, parseMode string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if parseMode == "" {
		parseMode = "HTML"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiBase:   apiBase,
		parseMode: parseMode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage delivers text to a chat through the given bot token
func (c *Client) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: c.parseMode,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}

	if !body.OK {
		if body.Description != "" {
			return fmt.Errorf("telegram API error: %s", body.Description)
		}
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
