package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/service"
	"feedback-backend/internal/validation"
)

// FeedbackService is the ingestion and listing API the handlers call.
type FeedbackService interface {
	Submit(ctx context.Context, in validation.FeedbackInput) (string, error)
	List(ctx context.Context, page, pageSize int) (*service.Page, error)
}

type FeedbackHandler struct {
	feedback FeedbackService
}

func NewFeedbackHandler(feedback FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
	}
}

type SubmitFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ListFeedbackResponse struct {
	Success bool `json:"success"`
	*service.Page
}

// --- POST /feedback ---

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFeedback(r)
	if err != nil {
		writeError(w, r, err, "Failed to submit feedback")
		return
	}

	id, err := h.feedback.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Failed to submit feedback")
		return
	}

	writeJSON(w, http.StatusCreated, SubmitFeedbackResponse{
		Success: true,
		Message: "Thank you for your feedback!",
		ID:      id,
	})
}

// decodeFeedback reads a JSON submission. A value of the wrong JSON type is
// reported against its field together with the rest of the schema errors.
func decodeFeedback(r *http.Request) (validation.FeedbackInput, error) {
	var in validation.FeedbackInput
	err := json.NewDecoder(r.Body).Decode(&in)
	if err == nil {
		return in, nil
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return in, &apperr.ValidationError{Fields: []apperr.FieldError{
			{Field: "body", Message: "Request body must be a JSON object"},
		}}
	}

	fields := []apperr.FieldError{{
		Field:   typeErr.Field,
		Message: fmt.Sprintf("Expected %s, received %s", expectedType(typeErr), typeErr.Value),
	}}
	for _, fe := range validation.ValidateFeedback(in) {
		if fe.Field != typeErr.Field {
			fields = append(fields, fe)
		}
	}
	return in, &apperr.ValidationError{Fields: fields}
}

func expectedType(e *json.UnmarshalTypeError) string {
	switch e.Type.Kind() {
	case reflect.Float64, reflect.Pointer:
		return "number"
	default:
		return e.Type.Kind().String()
	}
}

// --- GET /feedback ---

func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	page, pageErr := queryInt(r, "page", service.DefaultPage)
	limit, limitErr := queryInt(r, "limit", service.DefaultPageSize)
	if pageErr != nil || limitErr != nil {
		var fields []apperr.FieldError
		if pageErr != nil {
			fields = append(fields, apperr.FieldError{Field: "page", Message: "Page must be a positive integer"})
		}
		if limitErr != nil {
			fields = append(fields, apperr.FieldError{Field: "limit", Message: "Limit must be a positive integer"})
		}
		writeError(w, r, &apperr.ValidationError{Fields: fields}, "Failed to fetch feedbacks")
		return
	}

	result, err := h.feedback.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err, "Failed to fetch feedbacks")
		return
	}

	writeJSON(w, http.StatusOK, ListFeedbackResponse{Success: true, Page: result})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
