package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerScheme = "Bearer"

const contextKeyClaims = "auth_claims"

// Header failures, internal only. Same deal as the token errors: the
// response body never says which one happened.
var (
	ErrMissingToken    = errors.New("missing authorization header")
	ErrMalformedHeader = errors.New("malformed authorization header")
)

// ExtractBearer pulls the raw token out of an Authorization header value.
// The header must be exactly "Bearer <token>": two space-separated parts
// with the literal scheme.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

// ClaimsFromContext returns the claims set by RequireAuth. nil if not set.
func ClaimsFromContext(c *gin.Context) *Claims {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireAuth returns a middleware that checks for a valid bearer token and
// sets the decoded claims in context. Missing header, malformed header and
// failed verification all get the same 401 body.
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		claims, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}
