package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Middleware authenticates API requests and enforces the role policy.
// Requests the policy exempts or does not cover pass through untouched;
// everything else needs a bearer token whose role satisfies the policy.
type Middleware struct {
	secret []byte
	policy Policy
}

// NewMiddleware constructs an auth middleware around a shared HS256 secret.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{secret: secret, policy: policy}
}

// Wrap guards the handler. Authenticated requests continue with the
// household identity attached to the request context.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, protected := m.policy.RequiredRole(r)
		if !protected {
			next.ServeHTTP(w, r)
			return
		}

		claims, role, err := m.authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !RoleAtLeast(role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := WithIdentity(r.Context(), claims.HouseholdID, role, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, Role, error) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return nil, "", errors.New("auth: missing bearer token")
	}
	claims, err := ParseToken(strings.TrimSpace(token), m.secret)
	if err != nil {
		return nil, "", err
	}
	role, _ := NormalizeRole(claims.Role)
	return claims, role, nil
}
