package idm

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Amawers/idmsystem-sub001/internal/client/api"
	"github.com/Amawers/idmsystem-sub001/internal/client/auth"
	"github.com/Amawers/idmsystem-sub001/internal/client/config"
	"github.com/Amawers/idmsystem-sub001/internal/client/query"
	"github.com/Amawers/idmsystem-sub001/internal/client/realtime"
	"github.com/Amawers/idmsystem-sub001/internal/client/repositories/session"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// Client is the single entry point of the data-access layer. Calling code
// talks to one consistent API (From for table queries, Rpc for remote
// procedures, Channel for realtime subscriptions, Auth for the session)
// regardless of which component ultimately serves the call.
type Client struct {
	cfg    *config.Config
	log    logging.Logger
	db     *sql.DB
	pipe   *api.Pipeline
	tokens *auth.TokenStore
	auth   *auth.Client
	sock   *realtime.Socket
}

// New wires the full stack: session persistence (downgraded to in-memory
// when the local DB cannot be opened), token store, request pipeline,
// refresh coordinator, auth client, and the lazily-connected realtime
// socket.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*Client, error) {
	var (
		store session.Store = session.NewNoopStore()
		db    *sql.DB
	)
	if cfg.SessionDBPath != "" {
		opened, err := InitDatabase(ctx, cfg.SessionDBPath)
		if err != nil {
			log.Warn(ctx, "session persistence unavailable, continuing in memory", "error", err)
		} else {
			db = opened
			store = session.NewSQLiteStore(db)
		}
	}

	tokens := auth.NewTokenStore(store, log)
	tokens.Load(ctx)

	pipe := api.NewPipeline(cfg.BaseURL, cfg.RequestTimeout, tokens, log)
	coordinator := auth.NewRefreshCoordinator(tokens, pipe, log)
	pipe.SetRefresher(coordinator)

	return &Client{
		cfg:    cfg,
		log:    log,
		db:     db,
		pipe:   pipe,
		tokens: tokens,
		auth:   auth.NewClient(tokens, pipe, log),
		sock:   realtime.NewSocket(cfg.RealtimeURL, log),
	}, nil
}

// From starts a query builder over the given logical table.
func (c *Client) From(table string) *query.Builder {
	return query.NewBuilder(c.pipe, c.log, table)
}

// Rpc executes the named remote procedure with params.
func (c *Client) Rpc(ctx context.Context, name string, params any) (json.RawMessage, error) {
	return c.pipe.Rpc(ctx, name, params)
}

// Channel returns a realtime handle bound to the shared socket.
func (c *Client) Channel(name string) *realtime.Channel {
	return realtime.NewChannel(name, c.sock, c.log)
}

// RemoveChannel unsubscribes the handle's listeners.
func (c *Client) RemoveChannel(ch *realtime.Channel) {
	ch.Unsubscribe()
}

// Auth exposes the session operations.
func (c *Client) Auth() *auth.Client {
	return c.auth
}

// Tokens exposes the token store, mainly for diagnostics.
func (c *Client) Tokens() *auth.TokenStore {
	return c.tokens
}

// Close releases local resources. The shared realtime socket is left
// alone deliberately; see the realtime package.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
