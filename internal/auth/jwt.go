package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a token can fail verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims carries the household identity an access token encodes.
type Claims struct {
	HouseholdID string `json:"household_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) checkIdentity() error {
	if c.HouseholdID == "" {
		return errors.New("auth: token lacks household_id")
	}
	if _, ok := NormalizeRole(c.Role); !ok {
		return fmt.Errorf("auth: unknown role %q", c.Role)
	}
	return nil
}

// ParseToken verifies an HS256-signed access token against the shared
// secret and returns its claims. Expiry and not-before are enforced by
// the parser; household id and role are checked on top.
func ParseToken(token string, secret []byte) (*Claims, error) {
	if token == "" || len(secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := claims.checkIdentity(); err != nil {
		return nil, err
	}
	return claims, nil
}
