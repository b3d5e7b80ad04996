package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenExpiry pulls the exp claim out of an access token without
// verifying the signature (the backend is the verifier; the client only
// needs the expiry for bookkeeping). Returns 0 when the token is not a
// JWT or carries no expiry.
func accessTokenExpiry(token string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}

// accessTokenExpired reports whether the token carries an exp claim in the
// past. Tokens without a readable expiry are treated as still usable.
func accessTokenExpired(token string, now time.Time) bool {
	exp := accessTokenExpiry(token)
	return exp != 0 && exp <= now.Unix()
}
