package session

import (
	"context"
	"sync"

	"github.com/roychid/t3n28-football/pkg/models"
)

// Persister saves and restores the session across agent restarts.
// It is optional: a nil persister keeps the session in memory only.
type Persister interface {
	SaveSession(ctx context.Context, token string, profile *models.Profile) error
	Session(ctx context.Context) (string, *models.Profile, error)
	ClearSession(ctx context.Context) error
}

type logger interface {
	ErrorWithErr(msg string, err error)
}

// Store holds the current credential and profile. It is the sole source
// of truth for identity: token and profile are always replaced together.
type Store struct {
	mu      sync.RWMutex
	token   string
	profile *models.Profile

	persist Persister
	log     logger
}

// New creates a session store. persist and log may be nil.
func New(persist Persister, log logger) *Store {
	return &Store{persist: persist, log: log}
}

// SetSession atomically replaces the credential and profile. The tier
// config is validated once here so read sites never re-check it.
func (s *Store) SetSession(ctx context.Context, token string, profile *models.Profile) {
	if profile != nil {
		profile.TierConfig.Validate()
	}

	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveSession(ctx, token, profile); err != nil && s.log != nil {
			// The in-memory copy stays authoritative
			s.log.ErrorWithErr("Failed to persist session", err)
		}
	}
}

// Token returns the current bearer token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns the current subscriber profile, or nil when logged out
func (s *Store) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// IsAuthenticated reports whether a credential is held
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Clear removes both credential and profile. Safe to call when no
// session exists.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.ClearSession(ctx); err != nil && s.log != nil {
			s.log.ErrorWithErr("Failed to clear persisted session", err)
		}
	}
}

// Restore loads a previously persisted session, if any. Called once on
// startup; a missing record leaves the store logged out.
func (s *Store) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	token, profile, err := s.persist.Session(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if profile != nil {
		profile.TierConfig.Validate()
	}

	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.mu.Unlock()

	return nil
}
