package auth

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Amawers/idmsystem-sub001/internal/client/repositories/session"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// TokenSet is the current auth token tuple. Zero values mean "not held".
type TokenSet struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"` // unix seconds, 0 = unknown
	TokenID      string `json:"tokenId,omitempty"`
}

// TokenUpdate names the fields a mutation provides; nil fields are
// retained from the current tuple, not nulled.
type TokenUpdate struct {
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *int64
	TokenID      *string
}

// TokenStore holds the process-wide token tuple and keeps its persisted
// form in sync synchronously on every mutation. Persistence problems are
// logged and otherwise ignored: a client without durable storage still
// works for the lifetime of the process.
type TokenStore struct {
	mu      sync.Mutex
	current TokenSet
	store   session.Store
	log     logging.Logger
}

func NewTokenStore(store session.Store, log logging.Logger) *TokenStore {
	if store == nil {
		store = session.NewNoopStore()
	}
	return &TokenStore{store: store, log: log}
}

// Load hydrates the in-memory tuple from the persisted record. A missing
// or unreadable record is the normal "no session" state.
func (s *TokenStore) Load(ctx context.Context) {
	data, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load persisted session", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	var ts TokenSet
	if err := json.Unmarshal(data, &ts); err != nil {
		s.log.Warn(ctx, "discarding unreadable session record", "error", err)
		return
	}
	s.mu.Lock()
	s.current = ts
	s.mu.Unlock()
}

// Get returns a copy of the current tuple.
func (s *TokenStore) Get() TokenSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// AccessToken implements api.TokenSource.
func (s *TokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.AccessToken
}

// Set merges the provided fields over the current tuple and persists the
// result immediately.
func (s *TokenStore) Set(ctx context.Context, upd TokenUpdate) {
	s.mu.Lock()
	if upd.AccessToken != nil {
		s.current.AccessToken = *upd.AccessToken
	}
	if upd.RefreshToken != nil {
		s.current.RefreshToken = *upd.RefreshToken
	}
	if upd.ExpiresAt != nil {
		s.current.ExpiresAt = *upd.ExpiresAt
	}
	if upd.TokenID != nil {
		s.current.TokenID = *upd.TokenID
	}
	snapshot := s.current
	s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Warn(ctx, "failed to serialize session record", "error", err)
		return
	}
	if err := s.store.Save(ctx, data); err != nil {
		s.log.Warn(ctx, "failed to persist session record", "error", err)
	}
}

// Clear resets the tuple and removes the persisted record entirely, so a
// later Load reports "no session" rather than nulled leftovers.
func (s *TokenStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.current = TokenSet{}
	s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		s.log.Warn(ctx, "failed to remove persisted session record", "error", err)
	}
}
