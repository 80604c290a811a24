package middleware

import (
	"net/http"
	"strings"

	"feedback-backend/internal/auth"
)

// GuardRedirect decides where an admin-area request should go. An empty
// result means the request passes through.
//
//	anonymous     + login page  -> pass
//	anonymous     + other page  -> login page
//	authenticated + login page  -> dashboard
//	authenticated + other page  -> pass
func GuardRedirect(authenticated bool, path, loginPath, dashboardPath string) string {
	onLogin := strings.TrimSuffix(path, "/") == strings.TrimSuffix(loginPath, "/")
	switch {
	case !authenticated && !onLogin:
		return loginPath
	case authenticated && onLogin:
		return dashboardPath
	default:
		return ""
	}
}

// AdminGuard applies GuardRedirect to every request it wraps. It relies on
// Session having run first; a session that could not be checked is a 500
// rather than a trip to the login page.
func AdminGuard(loginPath, dashboardPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionError(r.Context()) != nil {
				http.Error(w, "Something went wrong", http.StatusInternalServerError)
				return
			}
			authenticated := auth.FromContext(r.Context()) != nil
			if target := GuardRedirect(authenticated, r.URL.Path, loginPath, dashboardPath); target != "" {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
