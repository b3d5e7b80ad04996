package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Amawers/idmsystem-sub001/internal/client/api"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// defaultSignUpRole is assigned when registration does not specify a role.
const defaultSignUpRole = "user"

// User is the backend's user object, kept schemaless on the client.
type User map[string]any

// SignUpParams is the payload accepted by SignUp. Email and Password are
// required; an empty Role is defaulted client-side.
type SignUpParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Client exposes the auth operations of the facade: login, logout,
// registration, and the current-user lookup with its in-memory fast path.
type Client struct {
	pipe   Poster
	tokens *TokenStore
	log    logging.Logger

	mu   sync.Mutex
	user User

	now func() time.Time
}

func NewClient(tokens *TokenStore, pipe Poster, log logging.Logger) *Client {
	return &Client{pipe: pipe, tokens: tokens, log: log, now: time.Now}
}

// loginPayload is what /auth/login and /auth/register respond with: the
// fresh token tuple plus the authenticated user.
type loginPayload struct {
	tokenPayload
	User User `json:"user"`
}

// Login authenticates with email and password, stores the returned token
// tuple, and caches the user for GetUser's fast path.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	resp, err := c.pipe.Do(ctx, "/auth/login", api.Options{
		Method:   http.MethodPost,
		Body:     map[string]string{"email": email, "password": password},
		SkipAuth: true,
	})
	if err != nil {
		return nil, err
	}

	var lp loginPayload
	if err := resp.Decode(&lp); err != nil {
		return nil, err
	}

	if lp.AccessToken != "" {
		c.tokens.Set(ctx, tokenUpdateFromPayload(lp.tokenPayload))
	}
	c.setUser(lp.User)
	return lp.User, nil
}

// Logout tells the server best-effort and always clears the local session,
// whatever the server outcome.
func (c *Client) Logout(ctx context.Context) error {
	defer func() {
		c.tokens.Clear(ctx)
		c.setUser(nil)
	}()

	_, err := c.pipe.Do(ctx, "/auth/logout", api.Options{
		Method:           http.MethodPost,
		DisableAuthRetry: true,
	})
	if err != nil {
		c.log.Warn(ctx, "server logout failed, clearing local session anyway", "error", err)
	}
	return nil
}

// SignUp registers a new account. Missing email or password fails before
// any network call; an unspecified role defaults to the baseline one.
func (c *Client) SignUp(ctx context.Context, params SignUpParams) (json.RawMessage, error) {
	if params.Email == "" {
		return nil, &api.ValidationError{Field: "email", Reason: "is required"}
	}
	if params.Password == "" {
		return nil, &api.ValidationError{Field: "password", Reason: "is required"}
	}
	if params.Role == "" {
		params.Role = defaultSignUpRole
	}

	resp, err := c.pipe.Do(ctx, "/auth/register", api.Options{
		Method:   http.MethodPost,
		Body:     params,
		SkipAuth: true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetUser returns the authenticated user, preferring the user already held
// in memory from a previous login or session check. The network fallback
// is a session-check call; it refreshes the cache on success.
func (c *Client) GetUser(ctx context.Context) (User, error) {
	if u := c.cachedUser(); u != nil {
		if !accessTokenExpired(c.tokens.Get().AccessToken, c.now()) {
			return u, nil
		}
	}

	resp, err := c.pipe.Do(ctx, "/auth/session", api.Options{})
	if err != nil {
		return nil, err
	}

	var sp struct {
		User User `json:"user"`
	}
	if err := resp.Decode(&sp); err != nil {
		return nil, err
	}
	if sp.User == nil {
		// some deployments answer with the bare user object
		var u User
		if err := resp.Decode(&u); err == nil && len(u) > 0 {
			sp.User = u
		}
	}
	c.setUser(sp.User)
	return sp.User, nil
}

// SetSession is a no-op retained only for call-site compatibility; token
// state is managed exclusively through login and refresh.
func (c *Client) SetSession(_, _ string) {}

func (c *Client) cachedUser() User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Client) setUser(u User) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
}
