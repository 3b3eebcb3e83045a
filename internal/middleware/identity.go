package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a user identifier extraction function used for per-user rate limit
// keys. The identifier comes from the context values set by JWTAuth, with a
// fallback to the raw JWT claims when another auth middleware stored the
// parsed token under "user". When no user is authenticated, "anon" is
// returned.

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// currentUserID extracts a user identifier from the Echo context. JWTAuth
// stores the subject claim under "user_id"; older clients of echo-jwt store
// the parsed token under "user".
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if u := c.Get("user"); u != nil {
		if tok, ok := u.(*jwt.Token); ok {
			if cl, ok := tok.Claims.(jwt.MapClaims); ok {
				if v, ok := cl["sub"].(string); ok && v != "" {
					return v
				}
				if v, ok := cl["user_id"].(string); ok && v != "" {
					return v
				}
			}
		}
	}
	return "anon"
}
