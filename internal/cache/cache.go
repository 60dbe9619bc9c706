package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roychid/t3n28-football/pkg/models"
)

// Store is the local key-value persistence for the dashboard agent:
// session credential and profile, dashboard settings, and the last-seen
// football payloads used for graceful degradation when over quota.
type Store struct {
	client *redis.Client
}

// New creates a new store instance
func New(host string, port int, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Session Operations

type sessionRecord struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// SaveSession persists the credential and profile as one record so a
// half-written session can never be restored.
func (s *Store) SaveSession(ctx context.Context, token string, profile *models.Profile) error {
	data, err := json.Marshal(sessionRecord{Token: token, Profile: profile})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.client.Set(ctx, "session", data, 0).Err()
}

// Session retrieves the persisted credential and profile. A missing
// record returns empty values, not an error.
func (s *Store) Session(ctx context.Context) (string, *models.Profile, error) {
	data, err := s.client.Get(ctx, "session").Bytes()
	if err != nil {
		if err == redis.Nil {
			return "", nil, nil // no stored session
		}
		return "", nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return rec.Token, rec.Profile, nil
}

// ClearSession removes the persisted session
func (s *Store) ClearSession(ctx context.Context) error {
	return s.client.Del(ctx, "session").Err()
}

// Settings Operations

// SaveSettings persists dashboard settings
func (s *Store) SaveSettings(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return s.client.Set(ctx, "settings", data, 0).Err()
}

// Settings retrieves dashboard settings, or zero settings when unset
func (s *Store) Settings(ctx context.Context) (*models.Settings, error) {
	data, err := s.client.Get(ctx, "settings").Bytes()
	if err != nil {
		if err == redis.Nil {
			return &models.Settings{}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

// Football Payload Operations

// SaveFootballPayload caches the data portion of a proxied football
// response, keyed by endpoint. Shown when the quota window is exhausted.
func (s *Store) SaveFootballPayload(ctx context.Context, endpoint string, data json.RawMessage, ttl time.Duration) error {
	key := fmt.Sprintf("football:%s", endpoint)
	return s.client.Set(ctx, key, []byte(data), ttl).Err()
}

// FootballPayload retrieves a cached football payload for an endpoint.
// Returns nil on cache miss.
func (s *Store) FootballPayload(ctx context.Context, endpoint string) (json.RawMessage, error) {
	key := fmt.Sprintf("football:%s", endpoint)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get football payload: %w", err)
	}

	return json.RawMessage(data), nil
}

// Usage Snapshot Operations

// SaveUsage caches the last-seen quota snapshot for display across restarts
func (s *Store) SaveUsage(ctx context.Context, usage *models.UsageSnapshot) error {
	data, err := json.Marshal(usage)
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}

	return s.client.Set(ctx, "usage", data, 0).Err()
}

// Usage retrieves the last-seen quota snapshot. Returns nil when none
// has been recorded yet.
func (s *Store) Usage(ctx context.Context) (*models.UsageSnapshot, error) {
	data, err := s.client.Get(ctx, "usage").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}

	var usage models.UsageSnapshot
	if err := json.Unmarshal(data, &usage); err != nil {
		return nil, fmt.Errorf("failed to unmarshal usage: %w", err)
	}

	return &usage, nil
}

// Health check
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
