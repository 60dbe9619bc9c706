package models

import "time"

// ChannelType identifies the delivery transport of a configured channel
type ChannelType string

const (
	ChannelTypeTelegram ChannelType = "telegram"
)

// Channel is a configured delivery target for broadcasts. Channels are
// owned by local configuration storage; the broadcast core only reads
// and filters them.
type Channel struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Type      ChannelType `json:"type" db:"type"`
	Token     string      `json:"token" db:"token"`
	ChatID    string      `json:"chat_id" db:"chat_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// Deliverable reports whether the channel is a usable telegram target:
// right type, bot token and chat id both present.
func (c Channel) Deliverable() bool {
	return c.Type == ChannelTypeTelegram && c.Token != "" && c.ChatID != ""
}

// Delivery is the outcome of one channel attempt within a broadcast.
// Entries keep the order in which channels were attempted.
type Delivery struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// BroadcastRecord is a persisted broadcast batch for the history view
type BroadcastRecord struct {
	ID         string     `json:"id" db:"id"`
	Text       string     `json:"text" db:"text"`
	Deliveries []Delivery `json:"deliveries" db:"deliveries"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Settings holds locally-stored dashboard preferences
type Settings struct {
	AffiliateLink string `json:"affiliate_link,omitempty"`
}
