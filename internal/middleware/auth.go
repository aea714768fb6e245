// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/splitchat/internal/auth"
)

type contextKey string

const (
	ContextUserID contextKey = "userID"
	ContextEmail  contextKey = "email"
)

// GetUserID returns the authenticated user id stored by RequireAuth.
func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok
}

// GetEmail returns the authenticated email stored by RequireAuth.
func GetEmail(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextEmail).(string)
	return val, ok
}

// RequireAuth validates the session token and stores its claims on the
// request context. The token comes from the Authorization header as a
// Bearer token, or from the "token" query parameter for clients that
// cannot set headers, such as browser WebSocket connections.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
