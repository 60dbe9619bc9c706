package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/roychid/t3n28-football/pkg/models"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	// Create a mini Redis server for testing
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	store, err := New(mr.Host(), mr.Server().Addr().Port, "", 0)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create store: %v", err)
	}

	return store, mr
}

func TestNew(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	profile := &models.Profile{
		ID:    42,
		Email: "roy@example.com",
		Name:  "Roy",
		Tier:  models.TierStarter,
		TierConfig: &models.TierConfig{
			Telegram: true,
			Channels: 1,
		},
	}

	if err := store.SaveSession(ctx, "tok-123", profile); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	token, restored, err := store.Session(ctx)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}

	if token != "tok-123" {
		t.Errorf("Expected token tok-123, got %s", token)
	}
	if restored == nil || restored.Email != "roy@example.com" {
		t.Errorf("Profile not restored: %+v", restored)
	}
	if restored.TierConfig == nil || !restored.TierConfig.Telegram {
		t.Error("TierConfig not restored")
	}
}

func TestStore_SessionMissing(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	token, profile, err := store.Session(ctx)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if token != "" || profile != nil {
		t.Errorf("Expected empty session, got token=%q profile=%+v", token, profile)
	}
}

func TestStore_ClearSession(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	if err := store.SaveSession(ctx, "tok", &models.Profile{Email: "a@b.c"}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := store.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	token, profile, err := store.Session(ctx)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if token != "" || profile != nil {
		t.Error("Session should be gone after ClearSession")
	}

	// Clearing an absent session is not an error
	if err := store.ClearSession(ctx); err != nil {
		t.Errorf("ClearSession on empty store failed: %v", err)
	}
}

func TestStore_Settings(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	// Unset settings come back zero-valued, not as an error
	settings, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings.AffiliateLink != "" {
		t.Errorf("Expected empty affiliate link, got %s", settings.AffiliateLink)
	}

	if err := store.SaveSettings(ctx, &models.Settings{AffiliateLink: "https://t.me/mychannel"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	settings, err = store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings.AffiliateLink != "https://t.me/mychannel" {
		t.Errorf("Expected saved affiliate link, got %s", settings.AffiliateLink)
	}
}

func TestStore_FootballPayload(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	payload := json.RawMessage(`{"response":[{"fixture":{"id":1}}]}`)
	if err := store.SaveFootballPayload(ctx, "/fixtures?live=all", payload, 10*time.Minute); err != nil {
		t.Fatalf("SaveFootballPayload failed: %v", err)
	}

	got, err := store.FootballPayload(ctx, "/fixtures?live=all")
	if err != nil {
		t.Fatalf("FootballPayload failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected payload %s, got %s", payload, got)
	}

	// Miss returns nil, nil
	got, err = store.FootballPayload(ctx, "/standings")
	if err != nil {
		t.Fatalf("FootballPayload miss failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil payload on miss, got %s", got)
	}

	// Payload expires with its TTL
	mr.FastForward(11 * time.Minute)
	got, err = store.FootballPayload(ctx, "/fixtures?live=all")
	if err != nil {
		t.Fatalf("FootballPayload after expiry failed: %v", err)
	}
	if got != nil {
		t.Error("Expected expired payload to be gone")
	}
}

func TestStore_Usage(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	usage, err := store.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if usage != nil {
		t.Errorf("Expected nil usage before any save, got %+v", usage)
	}

	if err := store.SaveUsage(ctx, &models.UsageSnapshot{Count: 42, Limit: 200}); err != nil {
		t.Fatalf("SaveUsage failed: %v", err)
	}

	usage, err = store.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if usage == nil || usage.Count != 42 || usage.Limit != 200 {
		t.Errorf("Unexpected usage snapshot: %+v", usage)
	}
}
