package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
)

type contextKey string

const authedClientKey contextKey = "authedClient"

type clientLookup interface {
	GetByEmail(ctx context.Context, email string) (*clients.Client, error)
}

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ClientAuth enforces an HMAC-signed JWT carrying the caller's email, then
// resolves it against the client table. A missing header is 401; a bad token
// or an email with no client row is 403. The webhook route is mounted
// outside this middleware.
func ClientAuth(secret string, lookup clientLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := identityClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Email == "" {
				http.Error(w, "invalid token", http.StatusForbidden)
				return
			}

			record, err := lookup.GetByEmail(r.Context(), claims.Email)
			if err != nil {
				if errors.Is(err, clients.ErrNotFound) {
					http.Error(w, "unknown user", http.StatusForbidden)
					return
				}
				http.Error(w, "auth lookup failed", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), authedClientKey, record)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientFromContext returns the authenticated client, when present.
func ClientFromContext(ctx context.Context) (*clients.Client, bool) {
	record, ok := ctx.Value(authedClientKey).(*clients.Client)
	return record, ok
}
