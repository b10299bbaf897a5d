package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	dom "Warden/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

// Verification failures, internal only: the HTTP layer collapses all of them
// into one generic 401 so callers can't probe which check failed.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is what an issued token carries. The token is self-contained: the
// server keeps no session state, so a token stays valid until expiry no
// matter what (there is no revocation).
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"uid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// TokenManager issues and verifies signed bearer tokens (HS256).
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time // swapped in tests to pin the clock
}

// NewTokenManager returns a new TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token embedding the account's id, username and email.
// Issued-at and expiry are stamped with second precision.
func (m *TokenManager) Issue(a dom.Account) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		AccountID: a.ID,
		Username:  a.Username,
		Email:     a.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature and expiry, returning the embedded claims.
// Failure modes: ErrTokenMalformed (not a three-segment token),
// ErrTokenInvalid (signature mismatch or any other rejection),
// ErrTokenExpired (now >= expiry; the exact expiry instant counts as expired).
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// TTLSeconds returns the configured token lifetime in whole seconds
// (the expiresIn field of login responses).
func (m *TokenManager) TTLSeconds() int64 {
	return int64(m.ttl / time.Second)
}
