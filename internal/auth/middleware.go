package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/practice-tracker/internal/apperror"
)

// CookieName is the HttpOnly cookie that carries the identity token.
const CookieName = "token"

// contextKey is unexported so no other package can read or shadow the
// identity stored in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// Attach verifies the identity token on each request and, when valid,
// stores the user id in the request context. It never rejects a request:
// anonymous operations must stay reachable, and protected operations reject
// through RequireUser.
func Attach(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := tokenFromRequest(r); raw != "" {
				if userID, err := tokens.Validate(raw); err == nil {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying a verified user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns ("", false) for anonymous contexts.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RequireUser is the authorization gate. It returns the caller's internal
// user id, or apperror.ErrUnauthorized when no verified identity is attached.
func RequireUser(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", apperror.Unauthorized()
	}
	return userID, nil
}

// tokenFromRequest prefers the cookie set at login and falls back to a
// bearer header for non-browser callers.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}
