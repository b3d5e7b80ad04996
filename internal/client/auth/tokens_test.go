package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Amawers/idmsystem-sub001/internal/client/repositories/session"
	"github.com/Amawers/idmsystem-sub001/internal/logging"

	_ "modernc.org/sqlite"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func setupSessionDB(t *testing.T) *session.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return session.NewSQLiteStore(db)
}

func TestTokenStoreSetMergesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore(session.NewNoopStore(), logging.NewNop())

	s.Set(ctx, TokenUpdate{
		AccessToken:  strPtr("a"),
		RefreshToken: strPtr("r"),
		ExpiresAt:    int64Ptr(100),
		TokenID:      strPtr("t1"),
	})
	s.Set(ctx, TokenUpdate{AccessToken: strPtr("a2")})

	got := s.Get()
	require.Equal(t, "a2", got.AccessToken)
	require.Equal(t, "r", got.RefreshToken)
	require.EqualValues(t, 100, got.ExpiresAt)
	require.Equal(t, "t1", got.TokenID)
}

func TestTokenStorePersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := setupSessionDB(t)

	s := NewTokenStore(store, logging.NewNop())
	s.Set(ctx, TokenUpdate{AccessToken: strPtr("a"), RefreshToken: strPtr("b")})

	reloaded := NewTokenStore(store, logging.NewNop())
	reloaded.Load(ctx)

	got := reloaded.Get()
	require.Equal(t, TokenSet{AccessToken: "a", RefreshToken: "b"}, got)
}

func TestTokenStoreClearRemovesPersistedRecord(t *testing.T) {
	ctx := context.Background()
	store := setupSessionDB(t)

	s := NewTokenStore(store, logging.NewNop())
	s.Set(ctx, TokenUpdate{AccessToken: strPtr("a"), RefreshToken: strPtr("b"), TokenID: strPtr("t")})
	s.Clear(ctx)

	require.Equal(t, TokenSet{}, s.Get())

	raw, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, raw)

	reloaded := NewTokenStore(store, logging.NewNop())
	reloaded.Load(ctx)
	require.Equal(t, TokenSet{}, reloaded.Get())
}

func TestTokenStoreLoadIgnoresCorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := setupSessionDB(t)
	require.NoError(t, store.Save(ctx, []byte(`{not json`)))

	s := NewTokenStore(store, logging.NewNop())
	s.Load(ctx)
	require.Equal(t, TokenSet{}, s.Get())
}

func TestTokenStoreWithoutDurableStorage(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore(nil, logging.NewNop())

	s.Set(ctx, TokenUpdate{AccessToken: strPtr("mem-only")})
	require.Equal(t, "mem-only", s.AccessToken())
	s.Clear(ctx)
	require.Empty(t, s.AccessToken())
}
