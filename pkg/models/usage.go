package models

import (
	"encoding/json"
	"time"
)

// UsageSnapshot is the server-reported quota window for a subscriber.
// The client never counts requests itself; each snapshot fully replaces
// the previous one.
type UsageSnapshot struct {
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining,omitempty"`
	CacheHits int    `json:"cache_hits,omitempty"`
	RealCalls int    `json:"real_calls,omitempty"`
	Date      string `json:"date,omitempty"`
	Tier      Tier   `json:"tier,omitempty"`
}

// Ratio returns count/limit, or 0 when the limit is unknown
func (u UsageSnapshot) Ratio() float64 {
	if u.Limit <= 0 {
		return 0
	}
	return float64(u.Count) / float64(u.Limit)
}

// FootballEnvelope is the wire shape of every proxied football response:
// the payload plus quota metadata attached by the backend.
type FootballEnvelope struct {
	Data      json.RawMessage `json:"data"`
	CacheHit  bool            `json:"cache_hit,omitempty"`
	Usage     UsageSnapshot   `json:"usage"`
	Warn      bool            `json:"warn,omitempty"`
	OverLimit bool            `json:"over_limit,omitempty"`
}

// Notification is a backend-issued message for the subscriber
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// UnreadCount returns the number of unread notifications in a list
func UnreadCount(notifs []Notification) int {
	unread := 0
	for _, n := range notifs {
		if !n.Read {
			unread++
		}
	}
	return unread
}

// SubscriptionRequest is a pending tier upgrade request
type SubscriptionRequest struct {
	ID            int64  `json:"id,omitempty"`
	UserID        int64  `json:"user_id,omitempty"`
	RequestedTier Tier   `json:"requested_tier,omitempty"`
	Status        string `json:"status,omitempty"`
	AdminNote     string `json:"admin_note,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	ResolvedAt    string `json:"resolved_at,omitempty"`
}

// SubscriptionAction is an admin verdict on a pending upgrade request.
// Action is "approve" or "reject".
type SubscriptionAction struct {
	RequestID int64  `json:"request_id"`
	Action    string `json:"action"`
	Note      string `json:"note,omitempty"`
}
