package idm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amawers/idmsystem-sub001/internal/client/config"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		BaseURL:        baseURL,
		RealtimeURL:    "ws://localhost:1/realtime",
		SessionDBPath:  filepath.Join(t.TempDir(), "session.db"),
		RequestTimeout: 2 * time.Second,
	}
}

func TestInitDatabaseAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)
}

func TestSessionSurvivesClientRestart(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accessToken": "a1", "refreshToken": "r1", "user": {"id": "u1"}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)

	first, err := New(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	_, err = first.Auth().Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	got := second.Tokens().Get()
	require.Equal(t, "a1", got.AccessToken)
	require.Equal(t, "r1", got.RefreshToken)
}

func TestNewWithoutSessionDBRunsInMemory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "http://localhost:1")
	cfg.SessionDBPath = ""

	client, err := New(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.Equal(t, "", client.Tokens().AccessToken())
}

func TestFromBuildsQueryAgainstTable(t *testing.T) {
	ctx := context.Background()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"id": 1.0}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New(ctx, testConfig(t, srv.URL), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	result, err := client.From("programs").Eq("status", "active").Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, "/query", path)
	require.NotNil(t, result.Data)
}

func TestRpcGoesThroughPipeline(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/ping", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": "pong"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New(ctx, testConfig(t, srv.URL), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	data, err := client.Rpc(ctx, "ping", nil)
	require.NoError(t, err)
	require.JSONEq(t, `"pong"`, string(data))
}

func TestRemoveChannelUnsubscribes(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, testConfig(t, "http://localhost:1"), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ch := client.Channel("room1")
	require.Equal(t, "room1", ch.Name())
	// no listener was attached, RemoveChannel must still be safe
	client.RemoveChannel(ch)
}
