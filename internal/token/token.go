// Package token implements the signed, time-limited bearer credential
// carried by clients in the Authorization header or the access cookie.
// Tokens are HS256 JWTs: {user_id, iat, exp} signed with the server secret.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential is returned by Verify for every failure mode.
// Malformed, forged, and expired tokens are deliberately indistinguishable
// to callers so the failure reason cannot be probed from outside.
var ErrInvalidCredential = errors.New("invalid credential")

// Claims carries the credential payload. Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec issues and verifies bearer credentials. Stateless and safe for
// concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a codec signing with secret. Credentials expire ttl
// after issuance.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed credential for the given user ID, stamped with
// the current time.
func (c *Codec) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of an encoded credential and
// returns the subject user ID and issuance time. The signature comparison
// is constant-time (HMAC verification inside the JWT library). Any failure
// returns ErrInvalidCredential.
func (c *Codec) Verify(encoded string) (userID int64, issuedAt time.Time, err error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(encoded, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return 0, time.Time{}, ErrInvalidCredential
	}

	userID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, time.Time{}, ErrInvalidCredential
	}
	if claims.IssuedAt == nil {
		return 0, time.Time{}, ErrInvalidCredential
	}
	return userID, claims.IssuedAt.Time, nil
}

// TTL returns the configured credential lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
