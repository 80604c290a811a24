package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/metrics"
)

// Authenticator checks admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*auth.Session, error)
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

const (
	LoginPath     = "/admin/login"
	DashboardPath = "/admin/dashboard"
)

type AuthHandler struct {
	auth   Authenticator
	cookie CookieOptions
	now    func() time.Time
}

func NewAuthHandler(authenticator Authenticator, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{
		auth:   authenticator,
		cookie: cookie,
		now:    time.Now,
	}
}

// --- Request / Response types ---

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool          `json:"success"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Admin     auth.Identity `json:"admin"`
}

// --- POST /auth/login ---
// Accepts JSON or an HTML form post. Form posts are answered with redirects
// so the login page works without scripts.

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := isFormPost(r)

	var req LoginRequest
	if form {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, LoginPath+"?error=1", http.StatusSeeOther)
			return
		}
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	session, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthenticationFailed) {
			metrics.IncLogin(metrics.ResultFailure)
			hlog.FromRequest(r).Warn().Msg("admin login rejected")
		} else {
			metrics.IncLogin(metrics.ResultError)
		}
		if form && errors.Is(err, apperr.ErrAuthenticationFailed) {
			http.Redirect(w, r, LoginPath+"?error=1", http.StatusSeeOther)
			return
		}
		writeError(w, r, err, "Login failed")
		return
	}

	metrics.IncLogin(metrics.ResultSuccess)
	hlog.FromRequest(r).Info().Str("admin_id", session.Identity.ID).Msg("admin logged in")
	h.setCookie(w, session.Token, session.ExpiresAt)

	if form {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Admin:     session.Identity,
	})
}

// --- GET /auth/session ---

func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if id == nil {
		writeError(w, r, apperr.ErrUnauthorized, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   id,
	})
}

// --- POST /auth/logout ---
// Tokens are stateless, so logging out only drops the cookie.

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if isFormPost(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Helpers ---

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func isFormPost(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}
