package middleware

import (
	"context"
	"net/http"
	"strings"

	"figment/internal/token"
)

type userIDKey struct{}

// Auth validates session tokens against the store. A request carrying
// a token must carry a live one; requests without a token pass only
// when required is false. Websocket clients cannot set headers from
// the browser, so a "token" query parameter is accepted as well.
func Auth(tokens token.Store, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				raw = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if raw != "" {
				userID, ok := tokens.Lookup(raw)
				if !ok {
					http.Error(w, "invalid or expired token", http.StatusUnauthorized)
					return
				}
				ctx := context.WithValue(r.Context(), userIDKey{}, userID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if required {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the user id the Auth middleware resolved for this
// request, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey{}).(string)
	return v
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
