package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roychid/t3n28-football/pkg/models"
)

type mockPersister struct {
	token   string
	profile *models.Profile
	saveErr error
}

func (m *mockPersister) SaveSession(ctx context.Context, token string, profile *models.Profile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	m.profile = profile
	return nil
}

func (m *mockPersister) Session(ctx context.Context) (string, *models.Profile, error) {
	return m.token, m.profile, nil
}

func (m *mockPersister) ClearSession(ctx context.Context) error {
	m.token = ""
	m.profile = nil
	return nil
}

func TestSetSessionAndReaders(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.Profile())

	profile := &models.Profile{Email: "roy@example.com", Tier: models.TierPro}
	store.SetSession(ctx, "tok-1", profile)

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-1", store.Token())
	assert.Equal(t, "roy@example.com", store.Profile().Email)
}

func TestSetSessionValidatesTierConfig(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()

	profile := &models.Profile{
		Tier: models.TierFree,
		TierConfig: &models.TierConfig{
			LeagueType: "bogus",
			Affiliate:  "whoever",
			Channels:   -1,
		},
	}
	store.SetSession(ctx, "tok", profile)

	cfg := store.Profile().TierConfig
	assert.Equal(t, models.LeagueTypeNonTop15, cfg.LeagueType)
	assert.Equal(t, models.AffiliateNone, cfg.Affiliate)
	assert.Equal(t, 0, cfg.Channels)
}

func TestClear(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()

	store.SetSession(ctx, "tok", &models.Profile{Email: "a@b.c"})
	store.Clear(ctx)

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.Profile())

	// Clearing an empty store is a no-op, not an error
	store.Clear(ctx)
	assert.False(t, store.IsAuthenticated())
}

func TestPersistence(t *testing.T) {
	persist := &mockPersister{}
	store := New(persist, nil)
	ctx := context.Background()

	store.SetSession(ctx, "tok", &models.Profile{Email: "roy@example.com"})
	assert.Equal(t, "tok", persist.token)

	store.Clear(ctx)
	assert.Empty(t, persist.token)
	assert.Nil(t, persist.profile)
}

func TestPersistFailureKeepsMemoryCopy(t *testing.T) {
	persist := &mockPersister{saveErr: errors.New("redis down")}
	store := New(persist, nil)
	ctx := context.Background()

	store.SetSession(ctx, "tok", &models.Profile{Email: "roy@example.com"})

	// Persist failed but the in-memory session is intact
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok", store.Token())
}

func TestRestore(t *testing.T) {
	persist := &mockPersister{
		token: "saved-tok",
		profile: &models.Profile{
			Email:      "roy@example.com",
			TierConfig: &models.TierConfig{LeagueType: "weird"},
		},
	}
	store := New(persist, nil)
	ctx := context.Background()

	err := store.Restore(ctx)
	assert.NoError(t, err)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "saved-tok", store.Token())
	// Restored config is validated too
	assert.Equal(t, models.LeagueTypeNonTop15, store.Profile().TierConfig.LeagueType)
}

func TestRestoreEmpty(t *testing.T) {
	store := New(&mockPersister{}, nil)

	err := store.Restore(context.Background())
	assert.NoError(t, err)
	assert.False(t, store.IsAuthenticated())
}
