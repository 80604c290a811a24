package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"feedback-backend/internal/apperr"
)

type errorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps the error taxonomy onto HTTP. fallback is the message shown
// for anything unexpected; the real cause only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if ve, ok := apperr.IsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	case errors.Is(err, apperr.ErrAuthenticationFailed):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid email or password"})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}
