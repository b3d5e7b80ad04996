package auth

import (
	"context"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/Amawers/idmsystem-sub001/internal/client/api"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// Poster is the slice of the pipeline the coordinator needs; *api.Pipeline
// satisfies it, fakes replace it in tests.
type Poster interface {
	Do(ctx context.Context, path string, opts api.Options) (*api.Response, error)
}

// tokenPayload is the tuple shape auth endpoints return.
type tokenPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    *int64 `json:"expiresAt"`
	TokenID      string `json:"tokenId"`
}

// RefreshCoordinator funnels every concurrent token-refresh attempt into
// one in-flight network call. Refresh never returns an error: a failed
// refresh clears the whole session and reports false, so the original
// failing request surfaces its own error to the caller.
type RefreshCoordinator struct {
	tokens *TokenStore
	pipe   Poster
	group  singleflight.Group
	log    logging.Logger
}

func NewRefreshCoordinator(tokens *TokenStore, pipe Poster, log logging.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{tokens: tokens, pipe: pipe, log: log}
}

// Refresh reports whether a valid access token is in place afterwards.
//
// Without a refresh token it answers false immediately, no network call.
// While a refresh is in flight every caller shares its outcome; the
// in-flight marker is released before any subsequent refresh may start.
func (c *RefreshCoordinator) Refresh(ctx context.Context) bool {
	if c.tokens.Get().RefreshToken == "" {
		return false
	}
	v, _, _ := c.group.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx), nil
	})
	ok, _ := v.(bool)
	return ok
}

func (c *RefreshCoordinator) doRefresh(ctx context.Context) bool {
	refreshToken := c.tokens.Get().RefreshToken
	if refreshToken == "" {
		return false
	}

	resp, err := c.pipe.Do(ctx, "/auth/refresh", api.Options{
		Method:           http.MethodPost,
		Body:             map[string]string{"refreshToken": refreshToken},
		SkipAuth:         true,
		DisableAuthRetry: true,
	})
	if err != nil {
		c.log.Warn(ctx, "token refresh failed, clearing session", "error", err)
		c.tokens.Clear(ctx)
		return false
	}

	var tp tokenPayload
	if err := resp.Decode(&tp); err != nil || tp.AccessToken == "" {
		c.log.Warn(ctx, "token refresh returned unusable payload, clearing session", "error", err)
		c.tokens.Clear(ctx)
		return false
	}

	c.tokens.Set(ctx, tokenUpdateFromPayload(tp))
	c.log.Debug(ctx, "access token refreshed")
	return true
}

// tokenUpdateFromPayload maps a server token tuple onto a store update,
// deriving the expiry from the access token claims when the server left
// it out.
func tokenUpdateFromPayload(tp tokenPayload) TokenUpdate {
	upd := TokenUpdate{AccessToken: &tp.AccessToken}
	if tp.RefreshToken != "" {
		upd.RefreshToken = &tp.RefreshToken
	}
	if tp.TokenID != "" {
		upd.TokenID = &tp.TokenID
	}
	switch {
	case tp.ExpiresAt != nil:
		upd.ExpiresAt = tp.ExpiresAt
	default:
		if exp := accessTokenExpiry(tp.AccessToken); exp != 0 {
			upd.ExpiresAt = &exp
		}
	}
	return upd
}
