package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"feedback-backend/internal/auth"
)

// SessionResolver turns a presented token into the admin behind it.
type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*auth.Identity, error)
}

type sessionErrKey struct{}

// SessionError returns the store failure hit while resolving the request's
// token, if any. Such a request is neither anonymous nor authenticated.
func SessionError(ctx context.Context) error {
	err, _ := ctx.Value(sessionErrKey{}).(error)
	return err
}

// Session resolves the session token carried by the request, if any, and
// stores the identity in the request context. It never rejects a request;
// a failed lookup is recorded for SessionError.
func Session(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolver.CurrentSession(r.Context(), token)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("resolve session")
				r = r.WithContext(context.WithValue(r.Context(), sessionErrKey{}, err))
			}
			if id != nil {
				r = r.WithContext(auth.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest reads the session token from the cookie, falling back to
// an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireSession rejects requests that carry no verified admin. When the
// session could not be checked at all the answer is 500, not 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionError(r.Context()) != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "Failed to verify session",
			})
			return
		}
		if auth.FromContext(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
